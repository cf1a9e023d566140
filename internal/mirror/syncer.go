// Package mirror implements the best-effort remote mirror hook: after any
// mutating command the store fires a notification here, and the syncer
// forwards it to an opaque transport without ever blocking a command or
// surfacing a failure to the ledger.
//
// There is deliberately no retry, backoff, or conflict resolution; the
// remote side is an external collaborator with undefined merge semantics.
package mirror

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Transport is the opaque remote mirror call. The AMQP client satisfies
// this; tests use a recorder.
type Transport interface {
	PublishSnapshotSync(ctx context.Context, version int64) error
}

// Syncer forwards snapshot-change notifications to the transport while the
// device is online. Each notification runs on its own goroutine; commands
// never wait on it.
type Syncer struct {
	transport  Transport
	online     atomic.Bool
	onComplete func(ctx context.Context, ts time.Time)

	wg sync.WaitGroup
}

// New creates a syncer. transport may be nil (mirror disabled); onComplete
// receives the success timestamp and may be nil.
func New(transport Transport, onComplete func(ctx context.Context, ts time.Time)) *Syncer {
	s := &Syncer{
		transport:  transport,
		onComplete: onComplete,
	}
	s.online.Store(true)
	return s
}

// SetOnline flips the device's reported connectivity. While offline,
// notifications no-op immediately.
func (s *Syncer) SetOnline(online bool) {
	s.online.Store(online)
}

// IsOnline reports the device's connectivity flag.
func (s *Syncer) IsOnline() bool {
	return s.online.Load()
}

// SnapshotChanged implements store.ChangeNotifier. It returns immediately;
// the publish happens in the background and its failure is logged, nothing
// more.
func (s *Syncer) SnapshotChanged(version int64) {
	if s.transport == nil || !s.online.Load() {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx := context.Background()

		if err := s.transport.PublishSnapshotSync(ctx, version); err != nil {
			slog.ErrorContext(ctx, "Mirror notification failed", "version", version, "error", err)
			return
		}
		if s.onComplete != nil {
			s.onComplete(ctx, time.Now())
		}
	}()
}

// Wait blocks until every in-flight notification finished. Used on
// shutdown and in tests.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
