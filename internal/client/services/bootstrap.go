package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/common"
	"github.com/dmitrijs2005/venuebook/internal/logging"
)

// Bootstrap restores a persisted session. Only the first call does any
// work; later calls return immediately. Whatever happens, the session is
// marked initialized (Loading=false, Ready closed) when the first call
// returns.
func (s *Session) Bootstrap(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	defer s.markInitialized()

	// collapse near-simultaneous starts onto this one
	timer := time.NewTimer(s.settings.BootstrapDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return
	}

	token, err := s.restore(ctx)
	if err != nil || token == "" {
		return
	}

	user, err := s.fetcher.Fetch(ctx, token)
	switch kind := client.Kind(err); {
	case err == nil:
		if s.adoptProfile(token, user) {
			s.log.Info(ctx, "session restored", "user_id", user.ID)
		}
	case kind == client.KindExpired:
		s.discard(ctx, token)
	default:
		s.log.Warn(ctx, "could not validate stored session, keeping it",
			"kind", kind.String(), "error", err, "token", logging.Redact(token))
	}
}

// restore reads the stored token and installs it in memory with no profile,
// unless a credential flow got there first. It returns "" when there is
// nothing to validate.
func (s *Session) restore(ctx context.Context) (string, error) {
	s.installMu.Lock()
	defer s.installMu.Unlock()

	raw, err := s.store.Get(ctx, common.TokenKey)
	if err != nil {
		s.log.Error(ctx, "read session store", "error", err)
		return "", err
	}
	if len(raw) == 0 {
		s.log.Info(ctx, "no stored session")
		return "", nil
	}
	token := string(raw)

	// optimistic: the UI may treat the user as possibly signed in right away
	if !s.setTokenIfEmpty(token) {
		s.log.Info(ctx, "session already established, skipping restore")
		return "", nil
	}
	return token, nil
}

// discard drops an expired token. The store entry goes only if it still
// holds token, so a token written meanwhile by another flow or process
// survives. The in-memory copy goes whenever it is still token, since the
// server has rejected it.
func (s *Session) discard(ctx context.Context, token string) {
	ctx = context.WithoutCancel(ctx)

	s.installMu.Lock()
	defer s.installMu.Unlock()

	removed, err := s.store.CompareAndDelete(ctx, common.TokenKey, []byte(token))
	switch {
	case err != nil:
		s.log.Error(ctx, "remove expired token from store", "error", err)
	case !removed:
		s.log.Info(ctx, "expired token already replaced in store", "token", logging.Redact(token))
	default:
		s.log.Info(ctx, "stored session expired", "token", logging.Redact(token))
	}
	s.clearIfToken(token)
}
