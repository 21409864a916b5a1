package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/client/models"
	"github.com/dmitrijs2005/venuebook/internal/common"
	"github.com/dmitrijs2005/venuebook/internal/logging"
)

// Messages used in failed AuthResults when the server gave none.
const (
	MsgConnectionError    = "connection error"
	MsgInvalidToken       = "invalid token"
	MsgLoginFailed        = "login failed"
	MsgRegisterFailed     = "registration failed"
	MsgUnexpectedResponse = "unexpected server response"
)

// NormalizeEmail trims and lowercases an address before it is sent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login exchanges credentials for a token and adopts it. Expected failures
// come back as AuthResult{Success: false}; there is no error return.
func (s *Session) Login(ctx context.Context, email, password string) models.AuthResult {
	req := models.LoginRequest{
		Email:       NormalizeEmail(email),
		Password:    password,
		Fingerprint: s.Fingerprint(ctx),
	}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		s.log.Info(ctx, "login rejected", "email", req.Email, "error", err)
		return failureFromError(err, MsgLoginFailed)
	}
	if !resp.Success {
		return models.Failure(messageOr(resp.ErrorMessage(), MsgLoginFailed))
	}

	if err := s.AdoptToken(ctx, resp.Token); err != nil {
		s.log.Warn(ctx, "login token could not be adopted", "error", err)
		return models.Failure(MsgInvalidToken)
	}

	return models.AuthResult{
		Success: true,
		Message: resp.Message,
		Token:   resp.Token,
		User:    s.User(),
	}
}

// Register submits the sign-up form. It does not sign the user in; callers
// follow up with Login.
func (s *Session) Register(ctx context.Context, form models.RegisterForm, avatar *models.Avatar) models.AuthResult {
	form.Email = strings.TrimSpace(form.Email)
	if form.Fingerprint == "" {
		form.Fingerprint = s.Fingerprint(ctx)
	}

	resp, err := s.client.Register(ctx, form, avatar)
	if err != nil {
		s.log.Info(ctx, "registration rejected", "email", form.Email, "error", err)
		return failureFromError(err, MsgRegisterFailed)
	}
	if !resp.Success {
		return models.Failure(messageOr(resp.ErrorMessage(), MsgRegisterFailed))
	}

	return models.AuthResult{
		Success: true,
		Message: resp.Message,
		Token:   resp.Token,
		User:    resp.User,
	}
}

// AdoptToken persists a freshly issued token and validates it by fetching
// the profile. Unlike bootstrap there is no benefit of the doubt: any
// failure ends the session and is returned.
func (s *Session) AdoptToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if err := s.install(ctx, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	user, err := s.fetcher.Fetch(ctx, token)
	if err != nil {
		s.terminate(ctx, token)
		return fmt.Errorf("adopt token: %w", err)
	}
	if !s.adoptProfile(token, user) {
		return ErrSuperseded
	}

	s.log.Info(ctx, "signed in", "user_id", user.ID, "token", logging.Redact(token))
	return nil
}

// Logout always clears the local session. The server is told on a best
// effort basis; its failure is logged and otherwise ignored. The returned
// error only reports a failure to clear the store.
func (s *Session) Logout(ctx context.Context) error {
	s.installMu.Lock()
	token := s.Token()
	storeErr := s.store.Delete(context.WithoutCancel(ctx), common.TokenKey)
	s.clear()
	s.installMu.Unlock()

	if token != "" {
		s.notifyServerLogout(ctx, token)
	}

	if storeErr != nil {
		s.log.Error(ctx, "clear session store", "error", storeErr)
		return fmt.Errorf("clear session store: %w", storeErr)
	}
	s.log.Info(ctx, "signed out")
	return nil
}

// Refresh re-reads the profile for the current token. Errors are always
// returned, classified; ErrExpired also ends the session.
func (s *Session) Refresh(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return ErrNoSession
	}

	user, err := s.fetcher.Fetch(ctx, token)
	if err != nil {
		if client.Kind(err) == client.KindExpired {
			s.terminate(ctx, token)
		}
		return fmt.Errorf("refresh profile: %w", err)
	}
	if !s.adoptProfile(token, user) {
		return ErrSuperseded
	}
	return nil
}

// terminate is logout scoped to one token: it clears store and memory only
// where token is still current, then tells the server.
func (s *Session) terminate(ctx context.Context, token string) {
	ctx = context.WithoutCancel(ctx)

	s.installMu.Lock()
	if _, err := s.store.CompareAndDelete(ctx, common.TokenKey, []byte(token)); err != nil {
		s.log.Error(ctx, "remove token from store", "error", err)
	}
	cleared := s.clearIfToken(token)
	s.installMu.Unlock()

	if cleared {
		s.log.Info(ctx, "session ended", "token", logging.Redact(token))
	}
	s.notifyServerLogout(ctx, token)
}

// install writes token to the store and then to memory as one step with
// respect to other flows. On a store error memory is left alone.
func (s *Session) install(ctx context.Context, token string) error {
	s.installMu.Lock()
	defer s.installMu.Unlock()

	if err := s.store.Set(ctx, common.TokenKey, []byte(token)); err != nil {
		return err
	}
	s.setToken(token)
	return nil
}

func (s *Session) notifyServerLogout(ctx context.Context, token string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.settings.ProfileTimeout)
	defer cancel()

	if err := s.client.Logout(ctx, token); err != nil {
		s.log.Warn(ctx, "server logout failed", "error", err, "token", logging.Redact(token))
	}
}

func failureFromError(err error, fallback string) models.AuthResult {
	var se *client.StatusError
	switch {
	case errors.As(err, &se):
		return models.Failure(messageOr(se.Message, fallback))
	case errors.Is(err, client.ErrMalformedResponse):
		return models.Failure(MsgUnexpectedResponse)
	default:
		return models.Failure(MsgConnectionError)
	}
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
