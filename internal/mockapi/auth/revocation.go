package auth

import (
	"sync"
	"time"
)

// Revocations remembers logged-out token ids until they would have expired
// anyway.
type Revocations struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

func NewRevocations() *Revocations {
	return &Revocations{ids: make(map[string]time.Time), now: time.Now}
}

func (r *Revocations) Revoke(id string, expires time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = expires
	r.sweep()
}

func (r *Revocations) Revoked(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

// sweep drops entries whose tokens have expired. Callers hold mu.
func (r *Revocations) sweep() {
	now := r.now()
	for id, exp := range r.ids {
		if !exp.IsZero() && exp.Before(now) {
			delete(r.ids, id)
		}
	}
}
