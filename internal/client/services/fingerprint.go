package services

import (
	"context"

	"github.com/dmitrijs2005/venuebook/internal/common"
	"github.com/google/uuid"
)

// Fingerprint returns the per-install identifier sent with login and
// registration, creating and persisting it on first use. It returns "" if
// the store is unavailable; the field is optional for the server.
func (s *Session) Fingerprint(ctx context.Context) string {
	s.fpMu.Lock()
	defer s.fpMu.Unlock()

	if s.fingerprint != "" {
		return s.fingerprint
	}

	stored, err := s.store.SetIfAbsent(ctx, common.FingerprintKey, []byte(uuid.NewString()))
	if err != nil {
		s.log.Warn(ctx, "fingerprint unavailable", "error", err)
		return ""
	}
	s.fingerprint = string(stored)
	return s.fingerprint
}
