package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/client/models"
	"github.com/dmitrijs2005/venuebook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/venuebook/internal/logging"
)

var (
	// ErrNoSession is returned by operations that need a token when there is none.
	ErrNoSession = errors.New("no active session")
	// ErrEmptyToken is returned when asked to adopt an empty token.
	ErrEmptyToken = errors.New("empty token")
	// ErrSuperseded means another flow replaced the token while this one
	// was waiting on the network; its result was discarded.
	ErrSuperseded = errors.New("session superseded")
)

const (
	DefaultBootstrapDelay     = 50 * time.Millisecond
	DefaultProfileTimeout     = 10 * time.Second
	DefaultRevalidateInterval = 30 * time.Minute
)

// Settings tunes the timers of a Session. Zero fields take the defaults.
type Settings struct {
	BootstrapDelay     time.Duration
	ProfileTimeout     time.Duration
	RevalidateInterval time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.BootstrapDelay <= 0 {
		s.BootstrapDelay = DefaultBootstrapDelay
	}
	if s.ProfileTimeout <= 0 {
		s.ProfileTimeout = DefaultProfileTimeout
	}
	if s.RevalidateInterval <= 0 {
		s.RevalidateInterval = DefaultRevalidateInterval
	}
	return s
}

// Snapshot is a consistent, read-only view of the session.
type Snapshot struct {
	Token         string
	User          *models.Profile
	Authenticated bool
	// Loading is true only until bootstrap finishes. Later operations such
	// as Login never set it again.
	Loading bool
	// ExpiresAt is read from the token when it is a JWT; zero otherwise.
	ExpiresAt time.Time
}

// SessionManager is what the UI layer depends on.
type SessionManager interface {
	State() Snapshot
	Ready() <-chan struct{}
	Subscribe() (<-chan Snapshot, func())

	Bootstrap(ctx context.Context)
	Login(ctx context.Context, email, password string) models.AuthResult
	Register(ctx context.Context, form models.RegisterForm, avatar *models.Avatar) models.AuthResult
	AdoptToken(ctx context.Context, token string) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Close()
}

// Session is the SessionManager implementation.
type Session struct {
	client   client.Client
	store    metadata.Repository
	fetcher  *ProfileFetcher
	log      logging.Logger
	settings Settings

	mu    sync.RWMutex
	token string
	user  *models.Profile

	// installMu pairs each store write of the token with the matching
	// in-memory change, so concurrent flows cannot leave them apart.
	installMu sync.Mutex

	started     atomic.Bool
	initialized atomic.Bool
	ready       chan struct{}

	fpMu        sync.Mutex
	fingerprint string

	// changeMu serialises change notifications so the scheduler and
	// subscribers always end on the latest state.
	changeMu    sync.Mutex
	revalidator *Revalidator
	baseCtx     context.Context
	cancel      context.CancelFunc

	subsMu  sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

var _ SessionManager = (*Session)(nil)

func NewSession(c client.Client, store metadata.Repository, log logging.Logger, settings Settings) *Session {
	if log == nil {
		log = logging.Nop{}
	}
	settings = settings.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		client:   c,
		store:    store,
		fetcher:  NewProfileFetcher(c, settings.ProfileTimeout),
		log:      log.With("component", "session"),
		settings: settings,
		ready:    make(chan struct{}),
		baseCtx:  ctx,
		cancel:   cancel,
		subs:     make(map[int]chan Snapshot),
	}
	s.revalidator = NewRevalidator(settings.RevalidateInterval, s.revalidate)
	return s
}

func (s *Session) State() Snapshot {
	s.mu.RLock()
	token, user := s.token, s.user
	s.mu.RUnlock()

	snap := Snapshot{
		Token:         token,
		User:          user,
		Authenticated: token != "" && user != nil,
		Loading:       !s.initialized.Load(),
	}
	if claims, ok := models.ParseTokenClaims(token); ok {
		snap.ExpiresAt = claims.ExpiresAt
	}
	return snap
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

func (s *Session) Loading() bool {
	return !s.initialized.Load()
}

// Ready is closed once bootstrap has finished, whatever its outcome.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe returns a channel that receives a Snapshot after every change.
// Slow readers only see the latest one. Call the returned func to stop.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// Close stops background work. The session state is left as is.
func (s *Session) Close() {
	s.cancel()
	s.revalidator.Stop()
}

// setToken installs token with no profile yet.
func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()
	s.changed()
}

// setTokenIfEmpty installs token unless a credential flow already did.
func (s *Session) setTokenIfEmpty(token string) bool {
	s.mu.Lock()
	ok := s.token == ""
	if ok {
		s.token = token
		s.user = nil
	}
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

// adoptProfile attaches user to the session only while token is still the
// current one.
func (s *Session) adoptProfile(token string, user *models.Profile) bool {
	s.mu.Lock()
	ok := token != "" && s.token == token
	if ok {
		s.user = user
	}
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

// clearIfToken drops token and profile only if token is still current.
func (s *Session) clearIfToken(token string) bool {
	s.mu.Lock()
	ok := s.token == token
	if ok {
		s.token = ""
		s.user = nil
	}
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

func (s *Session) clear() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	s.changed()
}

func (s *Session) markInitialized() {
	if s.initialized.CompareAndSwap(false, true) {
		close(s.ready)
		s.changed()
	}
}

// changed reconciles the revalidation loop with the current state and
// notifies subscribers.
func (s *Session) changed() {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	snap := s.State()
	if snap.Authenticated {
		if s.revalidator.Start(s.baseCtx) {
			s.log.Debug(s.baseCtx, "revalidation started", "interval", s.settings.RevalidateInterval)
		}
	} else if s.revalidator.Stop() {
		s.log.Debug(s.baseCtx, "revalidation stopped")
	}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale value, keep the newest
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
