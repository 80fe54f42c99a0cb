package client

import (
	"context"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
)

// Client is the transport used by the auth operations. Implementations
// return ErrUnavailable or ErrUnauthorized for the common failure classes and
// never retry on their own.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	SignIn(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	SignUp(ctx context.Context, form models.SignUpForm) (*models.LoginResult, error)
	FetchCurrentUser(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (*models.RefreshResult, error)
}
