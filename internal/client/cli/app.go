package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/client/config"
	"github.com/dmitrijs2005/venuebook/internal/client/services"
	"github.com/dmitrijs2005/venuebook/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	session services.SessionManager
	reader  *bufio.Reader
	out     io.Writer
	closers []func() error

	// ownLogout holds the token the user last signed out of. The watcher
	// stays quiet when the session it saw end was that one.
	ownLogout atomic.Value
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	store, closeStore, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	api := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout)
	session := services.NewSession(api, store, logger, services.Settings{
		BootstrapDelay:     c.BootstrapDelay,
		ProfileTimeout:     c.ProfileTimeout,
		RevalidateInterval: c.RevalidateInterval,
	})

	return &App{
		config:  c,
		logger:  logger,
		session: session,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closers: []func() error{closeStore},
	}, nil
}

// Run restores any saved session, then runs the REPL until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	go a.session.Bootstrap(ctx)
	if err := a.waitReady(ctx); err != nil {
		return err
	}

	go a.watchSession(ctx)

	a.Root(ctx)
	return nil
}

// Close stops background work and releases the store.
func (a *App) Close() error {
	a.session.Close()
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) waitReady(ctx context.Context) error {
	select {
	case <-a.session.Ready():
		return nil
	default:
	}

	fmt.Fprintln(a.out, "Restoring session...")
	select {
	case <-a.session.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Authenticated
}

// watchSession reports sign-outs the user did not ask for, such as a token
// rejected during revalidation.
func (a *App) watchSession(ctx context.Context) {
	updates, unsubscribe := a.session.Subscribe()
	defer unsubscribe()

	a.reportSignOuts(ctx, updates, a.session.State())
}

func (a *App) reportSignOuts(ctx context.Context, updates <-chan services.Snapshot, last services.Snapshot) {
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if last.Authenticated && !snap.Authenticated && snap.Token == "" && !a.isOwnLogout(last.Token) {
				fmt.Fprintln(a.out, "\nYour session has ended. Please log in again.")
			}
			last = snap
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) markOwnLogout(token string) {
	a.ownLogout.Store(token)
}

func (a *App) isOwnLogout(token string) bool {
	own, _ := a.ownLogout.Load().(string)
	return own != "" && own == token
}

func (a *App) getStatus() string {
	snap := a.session.State()
	switch {
	case snap.Authenticated:
		return fmt.Sprintf("(%s)", snap.User.Email)
	case snap.Token != "":
		return "(unverified)"
	default:
		return ""
	}
}

// Root runs the interactive loop on the app's input.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to venuebook CLI (type 'help' for commands)")
	if snap := a.session.State(); snap.Authenticated {
		fmt.Fprintf(a.out, "Signed in as %s\n", snap.User.DisplayName())
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
