// pkg/slotrcu/writer_test.go
package slotrcu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterReadRoundTrip(t *testing.T) {
	w, r := New(42)
	defer r.Close()

	if got := w.Read(); got != 42 {
		t.Fatalf("Writer.Read: got %d, want 42", got)
	}

	g := r.Read()
	if got := g.Value(); got != 42 {
		t.Errorf("ReadGuard.Value: got %d, want 42", got)
	}
	g.Close()
}

func TestWriterWritePublishesImmediately(t *testing.T) {
	w, r := New("v1")
	defer r.Close()

	w.Write("v2")

	if got := w.Read(); got != "v2" {
		t.Fatalf("Writer.Read after Write: got %q, want %q", got, "v2")
	}

	g := r.Read()
	defer g.Close()
	if got := g.Value(); got != "v2" {
		t.Errorf("ReadGuard.Value after Write: got %q, want %q", got, "v2")
	}
}

func TestWriterWriteNoSyncDefersReclamation(t *testing.T) {
	w, r := New(0)
	defer r.Close()

	g := r.Read()
	w.WriteNoSync(1)
	w.WriteNoSync(2)

	if !w.HasOldValues() {
		t.Fatal("expected retirements to be pending while guard is open")
	}

	reclaimed := w.TrySync()
	if len(reclaimed) != 0 {
		t.Fatalf("TrySync with an open guard reclaimed %v, want none", reclaimed)
	}

	g.Close()

	// Both 0 and 1 were retired while the guard was open, so both were
	// witnessed by it and both become quiescent once it closes.
	reclaimed = w.TrySync()
	if len(reclaimed) != 2 || reclaimed[0] != 0 || reclaimed[1] != 1 {
		t.Fatalf("TrySync after guard closed: got %v, want [0 1]", reclaimed)
	}
	if w.HasOldValues() {
		t.Fatal("expected no more pending retirements")
	}
}

func TestWriterWriteReturnsNewlyQuiescentValues(t *testing.T) {
	w, r := New(0)
	defer r.Close()

	g := r.Read()
	w.WriteNoSync(1)
	g.Close()

	// Write should drain both before and after publication, so the value
	// retired above (now quiescent) comes back from this very call, and so
	// does the value this Write replaces, since no reader is inside to
	// witness it.
	reclaimed := w.Write(2)
	if len(reclaimed) != 2 || reclaimed[0] != 0 || reclaimed[1] != 1 {
		t.Fatalf("Write: got reclaimed %v, want [0 1]", reclaimed)
	}
}

func TestWriterSyncDrainsAfterGuardCloses(t *testing.T) {
	w, r := New(0)
	defer r.Close()

	g := r.Read()
	w.WriteNoSync(1)

	done := make(chan []int)
	go func() {
		done <- w.Sync()
	}()

	g.Close()

	reclaimed := <-done
	if len(reclaimed) != 1 || reclaimed[0] != 0 {
		t.Fatalf("Sync: got %v, want [0]", reclaimed)
	}
}

func TestWriterCloseHandsBackFinalValueOnceReadersGone(t *testing.T) {
	w, r := New(7)

	if err := r.Close(); err != nil {
		t.Fatalf("Reader.Close: %v", err)
	}

	reclaimed, err := w.Close()
	if err != nil {
		t.Fatalf("Writer.Close: %v", err)
	}
	if len(reclaimed) != 1 || reclaimed[0] != 7 {
		t.Fatalf("Writer.Close reclaimed %v, want [7]", reclaimed)
	}
}

func TestWriterCloseLeavesValueForOpenReader(t *testing.T) {
	w, r := New(7)
	defer r.Close()

	reclaimed, err := w.Close()
	if err != nil {
		t.Fatalf("Writer.Close: %v", err)
	}
	for _, v := range reclaimed {
		if v == 7 {
			t.Fatalf("Writer.Close handed back the active value while a Reader was still open")
		}
	}
}

func TestWriterCloseTwiceReturnsErrClosed(t *testing.T) {
	w, r := New(0)
	defer r.Close()

	if _, err := w.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if _, err := w.Close(); err != ErrClosed {
		t.Fatalf("second Close: got %v, want ErrClosed", err)
	}
}

func TestWriterMethodsPanicAfterClose(t *testing.T) {
	w, r := New(0)
	defer r.Close()

	if _, err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	assert.PanicsWithValue(t, ErrClosed, func() { w.Read() })
	assert.PanicsWithValue(t, ErrClosed, func() { w.HasOldValues() })
	assert.PanicsWithValue(t, ErrClosed, func() { w.Write(1) })
	assert.PanicsWithValue(t, ErrClosed, func() { w.WriteNoSync(1) })
	assert.PanicsWithValue(t, ErrClosed, func() { w.TrySync() })
	assert.PanicsWithValue(t, ErrClosed, func() { w.Sync() })
}

func TestWriterConcurrentCallPanics(t *testing.T) {
	w, r := New(0)
	defer r.Close()

	block := make(chan struct{})
	w.writerCheck.Lock()
	defer w.writerCheck.Unlock()

	go func() {
		defer close(block)
		assert.PanicsWithValue(t, messageMultipleWriters, func() {
			w.Write(1)
		})
	}()

	<-block
}
