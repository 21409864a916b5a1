package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/client/models"
	"github.com/dmitrijs2005/venuebook/internal/client/services"
	"github.com/dmitrijs2005/venuebook/internal/common"
	"github.com/dmitrijs2005/venuebook/internal/logging"
)

// Indirections over the interactive helpers, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	readFile      = os.ReadFile
)

// maxAvatarSize matches what the API accepts for an upload.
const maxAvatarSize = 4 << 20

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Login(ctx, email, string(password))
	if !res.Success {
		fmt.Fprintf(a.out, "Login failed: %s\n", res.Message)
		return nil
	}

	if res.User != nil {
		fmt.Fprintf(a.out, "Welcome, %s!\n", res.User.DisplayName())
	} else {
		fmt.Fprintln(a.out, "Welcome!")
	}
	return nil
}

// Register collects the sign-up form. It does not sign in; the user is
// asked to log in afterwards.
func (a *App) Register(ctx context.Context) error {
	var form models.RegisterForm
	prompts := []struct {
		prompt string
		dst    *string
	}{
		{"First name", &form.FirstName},
		{"Last name", &form.LastName},
		{"Email", &form.Email},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.prompt, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	if string(password) != string(confirmation) {
		return errPasswordMismatch
	}
	form.Password = string(password)
	form.PasswordConfirmation = string(confirmation)

	avatar, err := a.readAvatar()
	if err != nil {
		return err
	}

	res := a.session.Register(ctx, form, avatar)
	if !res.Success {
		fmt.Fprintf(a.out, "Registration failed: %s\n", res.Message)
		return nil
	}

	fmt.Fprintln(a.out, "Registered! You can log in now.")
	return nil
}

func (a *App) readAvatar() (*models.Avatar, error) {
	path, err := getSimpleText(a.reader, "Avatar image path (optional, Enter to skip)", a.out)
	if err != nil || path == "" {
		return nil, err
	}

	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if len(data) > maxAvatarSize {
		return nil, fmt.Errorf("avatar is larger than %d MB", maxAvatarSize>>20)
	}
	return &models.Avatar{Filename: filepath.Base(path), Data: data}, nil
}

func (a *App) Logout(ctx context.Context) error {
	token := a.session.State().Token
	if token == "" {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	a.markOwnLogout(token)

	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	snap := a.session.State()
	if !snap.Authenticated {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	u := snap.User
	fmt.Fprintf(a.out, "%s <%s> (id %s)\n", u.DisplayName(), u.Email, u.ID)
	if u.Phone != "" {
		fmt.Fprintf(a.out, "Phone: %s\n", u.Phone)
	}
	return nil
}

func (a *App) Status(context.Context) error {
	snap := a.session.State()

	state := "signed out"
	switch {
	case snap.Loading:
		state = "restoring"
	case snap.Authenticated:
		state = "signed in"
	case snap.Token != "":
		state = "token not verified yet"
	}

	fmt.Fprintf(a.out, "Session: %s\n", state)
	fmt.Fprintf(a.out, "Token:   %s\n", logging.Redact(snap.Token))
	if !snap.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Expires: %s\n", snap.ExpiresAt.Local().Format(time.RFC1123))
	}
	fmt.Fprintf(a.out, "API:     %s\n", a.config.APIBaseURL)
	fmt.Fprintf(a.out, "Store:   %s\n", a.config.StoreDriver)
	return nil
}

// Refresh re-checks the session with the server and explains the outcome.
func (a *App) Refresh(ctx context.Context) error {
	err := a.session.Refresh(ctx)
	switch kind := client.Kind(err); {
	case err == nil:
		fmt.Fprintln(a.out, "Session is valid")
	case errors.Is(err, services.ErrNoSession):
		fmt.Fprintln(a.out, "Not logged in")
	case errors.Is(err, services.ErrSuperseded):
		fmt.Fprintln(a.out, "Session changed while checking, try again")
	case kind == client.KindExpired:
		fmt.Fprintln(a.out, "Session expired, please log in again")
	case kind == client.KindTimeout, kind == client.KindNetwork:
		fmt.Fprintln(a.out, "Server unreachable, keeping the current session")
	default:
		return err
	}
	return nil
}
