package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/client/models"
)

// ProfileFetcher performs the authenticated profile call under a deadline.
// It never touches session state; callers decide what the outcome means.
type ProfileFetcher struct {
	client  client.Client
	timeout time.Duration
}

func NewProfileFetcher(c client.Client, timeout time.Duration) *ProfileFetcher {
	if timeout <= 0 {
		timeout = DefaultProfileTimeout
	}
	return &ProfileFetcher{client: c, timeout: timeout}
}

// Fetch returns the profile for token or a classified error; it never
// returns (nil, nil). When the deadline fires the request context is
// cancelled, which aborts the HTTP exchange itself.
func (f *ProfileFetcher) Fetch(ctx context.Context, token string) (*models.Profile, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	p, err := f.client.Profile(ctx, token)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && client.Kind(err) != client.KindTimeout {
			err = fmt.Errorf("%w: %w", client.ErrTimeout, err)
		}
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: empty profile", client.ErrMalformedResponse)
	}
	return p, nil
}
