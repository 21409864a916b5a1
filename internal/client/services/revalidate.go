package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/logging"
)

// Revalidator runs check every interval until stopped. Start and Stop are
// idempotent: at most one loop exists at any time.
type Revalidator struct {
	interval time.Duration
	check    func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewRevalidator(interval time.Duration, check func(ctx context.Context)) *Revalidator {
	return &Revalidator{interval: interval, check: check}
}

// Start launches the loop under parent and reports whether it did; false
// means a loop was already running.
func (r *Revalidator) Start(parent context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil || parent.Err() != nil {
		return false
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	go r.loop(ctx)
	return true
}

// Stop cancels the running loop, including a check in flight, and reports
// whether there was one. It does not wait, so the loop may call it.
func (r *Revalidator) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}

func (r *Revalidator) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Revalidator) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// revalidate is the periodic check: an expired token ends the session,
// anything else is tolerated.
func (s *Session) revalidate(ctx context.Context) {
	snap := s.State()
	if !snap.Authenticated {
		return
	}
	token := snap.Token

	user, err := s.fetcher.Fetch(ctx, token)
	if ctx.Err() != nil {
		// stopped while the check was in flight; the result is stale
		return
	}

	switch kind := client.Kind(err); {
	case err == nil:
		s.adoptProfile(token, user)
	case kind == client.KindExpired:
		s.log.Info(ctx, "token rejected during revalidation", "token", logging.Redact(token))
		s.terminate(ctx, token)
	default:
		s.log.Debug(ctx, "revalidation inconclusive, keeping session", "kind", kind.String(), "error", err)
	}
}
