// pkg/slotrcu/writer.go
package slotrcu

import (
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// witness records a reader's sampled epoch value at the moment a value
// was retired, alongside a shared reference to that reader's live epoch
// counter. A retired value is quiescent once every witness that recorded
// it has been dropped because the referenced counter has since changed.
//
// Grounded on the original local-rcu source's
// `slab::Slab<(usize, Arc<AtomicUsize>)>` — this module uses a plain slice
// instead of a slab, since witnesses are only ever appended and
// compacted, never indexed by a stable handle the way registry ids are.
type witness struct {
	sampled uint64
	ep      *epoch
}

// retirement pairs ownership of a retired value with the list of readers
// that were witnessed inside a critical section when it was retired.
type retirement[T any] struct {
	value     T
	witnesses []witness
}

// Writer is the write side of a Slot: it publishes new versions and
// reclaims old ones once no Reader can still observe them. There is
// exactly one Writer per Slot — New is the only constructor, and nothing
// in this package exposes a second one for an existing Slot.
type Writer[T any] struct {
	slot *slot[T]

	// writerCheck catches a second goroutine calling into Writer methods
	// concurrently with this one. This package assumes a single
	// producer; writerCheck is a runtime tripwire for the case where a
	// caller violates that assumption, the same role
	// erikfastermann-readerwriter's unsyncWriterCheck plays for its
	// Writer.Get/Set/Swap.
	writerCheck sync.Mutex

	retirements []retirement[T]
	logger      *zap.Logger
	closed      bool
}

// Reader produces a new independent Reader over this Writer's Slot.
func (w *Writer[T]) Reader() *Reader[T] {
	return newReader(w.slot)
}

// Read returns the Writer's own direct view of the current value. Only
// the Writer publishes, so a relaxed load is sufficient and safe.
func (w *Writer[T]) Read() T {
	if w.closed {
		panic(ErrClosed)
	}
	return *w.slot.current.Load()
}

// HasOldValues reports whether the retirement list is non-empty.
func (w *Writer[T]) HasOldValues() bool {
	w.lock()
	defer w.unlock()
	if w.closed {
		panic(ErrClosed)
	}
	return len(w.retirements) > 0
}

// Write publishes newValue and returns every previously retired value
// that has become quiescent, draining the retirement list both before and
// after publication — so a retiree that only became quiescent because of
// this very write (a reader that was pinning it left in the interim) is
// still returned by this call rather than requiring a follow-up Sync.
func (w *Writer[T]) Write(newValue T) []T {
	w.lock()
	defer w.unlock()
	if w.closed {
		panic(ErrClosed)
	}

	out := w.trySyncLocked()
	w.writeNoSyncLocked(newValue)
	out = append(out, w.trySyncLocked()...)
	return out
}

// WriteNoSync publishes newValue without attempting any reclamation. It
// is wait-free except for the registry snapshot lock (uncontended against
// anything but Reader create/destroy). Calling this repeatedly without
// ever calling TrySync or Sync grows the retirement list without bound —
// a defined, non-error condition.
func (w *Writer[T]) WriteNoSync(newValue T) {
	w.lock()
	defer w.unlock()
	if w.closed {
		panic(ErrClosed)
	}
	w.writeNoSyncLocked(newValue)
}

func (w *Writer[T]) writeNoSyncLocked(newValue T) {
	old := w.slot.current.Load()

	v := newValue
	// Release-equivalent publication: see epoch.enter's comment on why
	// Go's atomic.Pointer needs no separate ordering parameter to give
	// the sequentially-consistent fence needed between this store and
	// the registry snapshot below.
	w.slot.current.Store(&v)

	entries := w.slot.registry.snapshot()
	witnesses := make([]witness, 0, len(entries))
	for _, e := range entries {
		sampled := e.sample()
		if insideAt(sampled) {
			witnesses = append(witnesses, witness{sampled: sampled, ep: e})
		}
	}

	w.retirements = append(w.retirements, retirement[T]{value: *old, witnesses: witnesses})

	if len(w.retirements) > retirementLogThreshold {
		w.log().Warn("slotrcu: retirement list growing",
			zap.Int("pending", len(w.retirements)),
			zap.String("hint", "call TrySync or Sync, or check for a leaked ReadGuard"),
		)
	}
}

// retirementLogThreshold is the pending-retirement count past which
// WriteNoSync starts warning that nobody is calling TrySync/Sync. It is
// a diagnostic aid only, not a limit — the list still grows unbounded
// past it.
const retirementLogThreshold = 1024

// TrySync performs a single non-blocking pass over the retirement list,
// dropping any witness whose referenced epoch has changed since it was
// sampled, and returning (and removing) every retirement whose witness
// list has become empty as a result.
func (w *Writer[T]) TrySync() []T {
	w.lock()
	defer w.unlock()
	if w.closed {
		panic(ErrClosed)
	}
	return w.trySyncLocked()
}

func (w *Writer[T]) trySyncLocked() []T {
	if len(w.retirements) == 0 {
		return nil
	}

	var reclaimed []T
	kept := w.retirements[:0]

	for _, r := range w.retirements {
		live := r.witnesses[:0]
		for _, wt := range r.witnesses {
			if wt.ep.sample() == wt.sampled {
				live = append(live, wt)
			}
		}

		if len(live) == 0 {
			// Every witness here was dropped because its referenced
			// epoch's last Load (in the loop above) observed a value
			// different from the one sampled at retirement time. Because
			// that counter is an atomic.Uint64, this Load is sequentially
			// consistent with the reader's release-equivalent store in
			// ReadGuard.Close, establishing the happens-before edge the
			// original source's TODO asks for without a separate fence.
			reclaimed = append(reclaimed, r.value)
			continue
		}

		r.witnesses = live
		kept = append(kept, r)
	}

	w.retirements = kept
	return reclaimed
}

// SyncOnce yields the scheduler exactly once and then performs one
// TrySync pass. It is a supplemented convenience between TrySync (never
// yields) and Sync (yields until done), grounded on the original
// local-rcu source's SyncKind::Weak: give readers one scheduling quantum
// to exit without committing to Sync's unbounded spin.
func (w *Writer[T]) SyncOnce() []T {
	runtime.Gosched()
	return w.TrySync()
}

// Sync loops calling TrySync, yielding the scheduler between empty
// passes, until the retirement list is empty. This is a convenience for
// shutdown paths, not steady-state use: if a ReadGuard has been leaked,
// Sync spins forever.
func (w *Writer[T]) Sync() []T {
	w.lock()
	closed := w.closed
	w.unlock()
	if closed {
		panic(ErrClosed)
	}
	return w.drain()
}

// drain is the unchecked retirement-draining loop behind Sync. Close
// uses it directly (instead of calling Sync) because by the time Close
// drains, it has already set closed to true itself and must not panic
// on its own cleanup.
func (w *Writer[T]) drain() []T {
	var all []T
	spins := 0
	for {
		w.lock()
		pending := len(w.retirements)
		if pending == 0 {
			w.unlock()
			return all
		}
		reclaimed := w.trySyncLocked()
		w.unlock()

		if len(reclaimed) == 0 {
			spins++
			if spins%syncSpinLogEvery == 0 {
				w.log().Warn("slotrcu: Sync still waiting on readers",
					zap.Int("spins", spins),
					zap.Int("pending", pending),
				)
			}
			runtime.Gosched()
			continue
		}
		all = append(all, reclaimed...)
	}
}

// syncSpinLogEvery bounds how chatty Sync's stall warning is; it is a
// logging cadence, not a retry limit.
const syncSpinLogEvery = 4096

// Close drains the retirement list (spinning in Sync if a guard is
// leaked) and releases the Writer's hold on the Slot. After Close, the
// Writer must not be used again: Read, HasOldValues, Write, WriteNoSync,
// TrySync, SyncOnce and Sync panic with ErrClosed once closed is true, the
// same way Reader.Read panics on a closed Reader, and a second Close
// returns ErrClosed. Reader and SetLogger do not check whether the Writer
// is closed. Readers derived from this Slot remain valid
// independently of the Writer's lifetime.
//
// If every Reader derived from this Slot has already been closed by the
// time Close runs, the still-published, never-retired value is also
// handed back through the returned slice: the published value is freed
// once no Reader holds it, realized here as a deterministic return rather
// than a finalizer, since Go has no destructor to do this implicitly the
// way the original Rust Shared's drop glue would. If any Reader is still
// open, the published value is left on the Slot for it; it becomes
// eligible for garbage collection only once every Reader has also
// closed, with no further notification to this caller. Callers that need
// deterministic release of every published T should close every Reader
// before or together with the Writer.
func (w *Writer[T]) Close() ([]T, error) {
	w.lock()
	if w.closed {
		w.unlock()
		return nil, ErrClosed
	}
	w.closed = true
	w.unlock()

	reclaimed := w.drain()

	w.lock()
	defer w.unlock()
	if len(w.slot.registry.snapshot()) == 0 {
		reclaimed = append(reclaimed, *w.slot.current.Load())
	}
	return reclaimed, nil
}

func (w *Writer[T]) lock() {
	if !w.writerCheck.TryLock() {
		panic(messageMultipleWriters)
	}
}

func (w *Writer[T]) unlock() {
	w.writerCheck.Unlock()
}
