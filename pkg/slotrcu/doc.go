// Package slotrcu implements a single-producer, multiple-consumer
// latest-value slot with deferred reclamation of superseded values.
//
// A single Writer publishes successive versions of a value of arbitrary
// type T. Any number of concurrent Readers observe some recent version —
// not necessarily the newest — and never see a torn or dangling value.
// Superseded versions are held until no Reader can still be observing
// them, at which point they are handed back to the Writer for reuse or
// destruction.
//
// # Concurrency
//
//   - Reads are wait-free: a bounded number of loads/stores independent
//     of contention, with no locks on the read path.
//   - Writes are wait-free except for a single short critical section
//     taken against Reader creation/destruction.
//   - Readers never block the Writer and are never blocked by it.
//
// # Basic usage
//
//	w, r := slotrcu.New(0)
//	defer w.Close()
//	defer r.Close()
//
//	done := make(chan struct{})
//	go func() {
//	    defer close(done)
//	    for i := 1; i <= 100; i++ {
//	        w.Write(i)
//	    }
//	}()
//
//	for {
//	    g := r.Read()
//	    v := g.Value()
//	    g.Close()
//	    if v == 100 {
//	        break
//	    }
//	}
//	<-done // the deferred w.Close must not overlap a Write
//
// # Leaks
//
// A ReadGuard that is never closed pins every version retired after it was
// taken, forever; Writer.Sync will spin indefinitely waiting for it. This
// is a deliberate failure mode — a leak, not a soundness violation — and is
// the caller's responsibility to avoid, the same way a leaked sync.RWMutex
// read-lock would stall a writer.
//
// # Thread safety
//
// Writer and Reader may be used from multiple goroutines only when T is
// safe for concurrent unsynchronized read access while a Writer may be
// publishing a new version — in practice, this means T's exported surface
// should behave like an immutable value once published (copy it, or make
// it an interface/pointer to data nobody mutates in place after Write).
// Go has no Send/Sync marker traits to enforce this at compile time; the
// package tests include a runtime regression, meant to be run under -race,
// in which many Readers observe values that a concurrent Writer publishes
// and never mutates afterwards.
package slotrcu
