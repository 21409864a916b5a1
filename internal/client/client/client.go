package client

import (
	"context"

	"github.com/dmitrijs2005/venuebook/internal/client/models"
)

// Client is the Remote Auth API as seen by the session manager.
type Client interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, form models.RegisterForm, avatar *models.Avatar) (*models.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, token string) (*models.Profile, error)
}
