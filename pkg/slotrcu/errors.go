// pkg/slotrcu/errors.go
package slotrcu

import "errors"

// ErrClosed is returned by a second Close of a Reader or Writer, and is
// the value Reader.Read and the Writer's other methods panic with when
// called after Close (see Writer.Close for which ones).
var ErrClosed = errors.New("slotrcu: use of closed handle")

// Panic messages for invariant violations. These are programmer errors —
// not recoverable conditions — and are never returned as errors: the core
// surfaces no runtime errors for misuse, only debug assertions that catch
// it as soon as it happens.
const (
	messageNestedRead        = "slotrcu: nested Read on the same Reader"
	messageUnbalancedRelease = "slotrcu: ReadGuard released twice or epoch corrupted"
	messageMultipleWriters   = "slotrcu: multiple Writers for the same Slot"
)
