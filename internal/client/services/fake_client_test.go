package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/client/models"
	"github.com/dmitrijs2005/venuebook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/venuebook/internal/common"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client with swappable behaviour per call.
type fakeClient struct {
	mu sync.Mutex

	loginFn    func(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	registerFn func(ctx context.Context, form models.RegisterForm, avatar *models.Avatar) (*models.AuthResponse, error)
	logoutFn   func(ctx context.Context, token string) error
	profileFn  func(ctx context.Context, token string) (*models.Profile, error)

	loginReqs     []models.LoginRequest
	registerForms []models.RegisterForm
	logoutTokens  []string
	profileTokens []string
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.loginReqs = append(f.loginReqs, req)
	fn := f.loginFn
	f.mu.Unlock()
	if fn == nil {
		return &models.AuthResponse{Success: false, Message: "no login configured"}, nil
	}
	return fn(ctx, req)
}

func (f *fakeClient) Register(ctx context.Context, form models.RegisterForm, avatar *models.Avatar) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.registerForms = append(f.registerForms, form)
	fn := f.registerFn
	f.mu.Unlock()
	if fn == nil {
		return &models.AuthResponse{Success: true}, nil
	}
	return fn(ctx, form, avatar)
}

func (f *fakeClient) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	f.logoutTokens = append(f.logoutTokens, token)
	fn := f.logoutFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, token)
}

func (f *fakeClient) Profile(ctx context.Context, token string) (*models.Profile, error) {
	f.mu.Lock()
	f.profileTokens = append(f.profileTokens, token)
	fn := f.profileFn
	f.mu.Unlock()
	if fn == nil {
		return nil, &client.StatusError{Code: 401}
	}
	return fn(ctx, token)
}

func (f *fakeClient) setProfile(fn func(ctx context.Context, token string) (*models.Profile, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileFn = fn
}

func (f *fakeClient) profileCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profileTokens)
}

func (f *fakeClient) logouts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.logoutTokens...)
}

// ---- profile behaviours ----

func profileOK(p *models.Profile) func(context.Context, string) (*models.Profile, error) {
	return func(context.Context, string) (*models.Profile, error) { return p, nil }
}

func profileErr(err error) func(context.Context, string) (*models.Profile, error) {
	return func(context.Context, string) (*models.Profile, error) { return nil, err }
}

// profileHang blocks until the request context is cancelled, like a server
// that never answers.
func profileHang(ctx context.Context, _ string) (*models.Profile, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

var (
	errExpired = &client.StatusError{Code: 401, Message: "Unauthenticated."}
	errServer  = &client.StatusError{Code: 500}
	errOffline = client.ErrNetwork
)

// ---- session helpers ----

func testSettings() Settings {
	return Settings{
		BootstrapDelay:     time.Millisecond,
		ProfileTimeout:     200 * time.Millisecond,
		RevalidateInterval: time.Hour,
	}
}

func newTestSession(t *testing.T, fc *fakeClient, settings Settings) (*Session, *metadata.MemoryRepository) {
	t.Helper()
	store := metadata.NewMemoryRepository()
	s := NewSession(fc, store, nil, settings)
	t.Cleanup(s.Close)
	return s, store
}

func storedToken(t *testing.T, store metadata.Repository) []byte {
	t.Helper()
	v, err := store.Get(context.Background(), common.TokenKey)
	require.NoError(t, err)
	return v
}

func seedToken(t *testing.T, store metadata.Repository, token string) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), common.TokenKey, []byte(token)))
}

// requireConsistent checks the state invariants that must hold at all times.
func requireConsistent(t *testing.T, snap Snapshot) {
	t.Helper()
	if snap.Authenticated {
		require.NotEmpty(t, snap.Token, "authenticated without token")
		require.NotNil(t, snap.User, "authenticated without user")
	}
	if snap.User != nil {
		require.NotEmpty(t, snap.Token, "profile without token")
	}
}

func waitReady(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("bootstrap did not finish")
	}
}
