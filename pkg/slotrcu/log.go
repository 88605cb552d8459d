// pkg/slotrcu/log.go
package slotrcu

import "go.uber.org/zap"

// SetLogger attaches a structured logger to w, used only to trace two
// defined-but-not-error pathological cases: a growing retirement list
// (WriteNoSync called without a matching TrySync/Sync) and a long Sync
// spin (a leaked ReadGuard pinning a retiree). Grounded on etcd's mvcc
// backend (other_examples/f8662257_jrchyang-etcd__server-mvcc-backend-backend.go.go),
// which carries an optional *zap.Logger field defaulting to
// zap.NewNop() for exactly this kind of opt-in operational tracing.
//
// The hot read/write paths never call into the logger unless one has been
// set; the default is a no-op logger, so SetLogger is purely opt-in.
func (w *Writer[T]) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	w.logger = l
}

func (w *Writer[T]) log() *zap.Logger {
	if w.logger == nil {
		return zap.NewNop()
	}
	return w.logger
}
