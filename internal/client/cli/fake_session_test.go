package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/venuebook/internal/client/config"
	"github.com/dmitrijs2005/venuebook/internal/client/models"
	"github.com/dmitrijs2005/venuebook/internal/client/services"
)

// fakeSession is a scripted services.SessionManager.
type fakeSession struct {
	mu    sync.Mutex
	state services.Snapshot
	ready chan struct{}
	subs  []chan services.Snapshot

	loginRes    models.AuthResult
	registerRes models.AuthResult
	logoutErr   error
	refreshErr  error

	loginEmail, loginPassword string
	registered                []models.RegisterForm
	avatars                   []*models.Avatar
	logoutCalls               int
	bootstrapped              bool
	closed                    bool
}

var _ services.SessionManager = (*fakeSession)(nil)

func newFakeSession() *fakeSession {
	ready := make(chan struct{})
	close(ready)
	return &fakeSession{ready: ready}
}

func (f *fakeSession) State() services.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) Ready() <-chan struct{} { return f.ready }

func (f *fakeSession) Subscribe() (<-chan services.Snapshot, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan services.Snapshot, 8)
	f.subs = append(f.subs, ch)
	return ch, func() {}
}

// set replaces the state and notifies subscribers.
func (f *fakeSession) set(s services.Snapshot) {
	f.mu.Lock()
	f.state = s
	subs := append([]chan services.Snapshot(nil), f.subs...)
	f.mu.Unlock()
	for _, ch := range subs {
		ch <- s
	}
}

func (f *fakeSession) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeSession) Bootstrap(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bootstrapped = true
}

func (f *fakeSession) Login(_ context.Context, email, password string) models.AuthResult {
	f.mu.Lock()
	f.loginEmail, f.loginPassword = email, password
	res := f.loginRes
	f.mu.Unlock()
	if res.Success {
		f.set(services.Snapshot{Token: res.Token, User: res.User, Authenticated: true})
	}
	return res
}

func (f *fakeSession) Register(_ context.Context, form models.RegisterForm, avatar *models.Avatar) models.AuthResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, form)
	f.avatars = append(f.avatars, avatar)
	return f.registerRes
}

func (f *fakeSession) AdoptToken(context.Context, string) error { return nil }

func (f *fakeSession) Logout(context.Context) error {
	f.mu.Lock()
	f.logoutCalls++
	err := f.logoutErr
	f.mu.Unlock()
	f.set(services.Snapshot{})
	return err
}

func (f *fakeSession) Refresh(context.Context) error { return f.refreshErr }

func (f *fakeSession) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func signedInState() services.Snapshot {
	return services.Snapshot{
		Token:         "tok1-abcdefgh",
		User:          &models.Profile{ID: "7", FirstName: "Ann", LastName: "Lee", Email: "ann@b.com"},
		Authenticated: true,
	}
}

// syncBuffer is an output sink safe to read while the watcher writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func newTestApp(t *testing.T, fs *fakeSession, input string) (*App, *syncBuffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	out := &syncBuffer{}
	return &App{
		config:  cfg,
		session: fs,
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     out,
	}, out
}

// stubInputs answers text prompts from lines and password prompts from
// passwords, in order.
func stubInputs(t *testing.T, lines []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		v := lines[0]
		lines = lines[1:]
		return v, nil
	}
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
}
