package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/lifecycle"
	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignUp prompts for email, name and password and registers a new account.
// The auth service announces success; the password is wiped before
// returning.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.authService.SignUp(ctx, models.SignUpForm{Email: email, Name: name, Password: password})
	return a.report(ctx, "sign up", err)
}

// SignIn prompts for credentials and authenticates.
func (a *App) SignIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.authService.SignIn(ctx, models.Credentials{Email: email, Password: password})
	return a.report(ctx, "sign in", err)
}

// WhoAmI reloads the user record from the server and prints it.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.authService.GetUser(ctx)
	if err := a.report(ctx, "get user", err); err != nil {
		return err
	}
	if user == nil {
		a.printf("no user\n")
		return nil
	}
	a.printf("id: %s\nemail: %s\nname: %s\nverified: %t\n", user.ID, user.Email, user.Name, user.EmailVerified)
	return nil
}

// Status prints the local session state without calling the server.
func (a *App) Status(_ context.Context) error {
	st := a.authService.State()

	a.printf("logged in: %t\n", st.IsLoggedIn())
	if st.User != nil {
		a.printf("user: %s\n", st.User.Email)
	}
	if st.TokenExpiresAt != 0 {
		now := time.Now()
		a.printf("token expires: %s (needs refresh: %t, expired: %t)\n",
			time.Unix(st.TokenExpiresAt, 0).Format(time.RFC3339), st.NeedsRefresh(now), st.IsExpired(now))
	}
	if st.RefreshTokenExpiresAt != 0 {
		a.printf("refresh token expires: %s\n", time.Unix(st.RefreshTokenExpiresAt, 0).Format(time.RFC3339))
	}
	pending := a.authService.RefreshPending()
	a.printf("refresh scheduled: %t\n", pending)
	if st.IsLoggedIn() && !pending && st.IsExpired(time.Now()) {
		a.printf("access token expired and no refresh scheduled, run refresh or sign in again\n")
	}
	if st.RefreshTokenExpired {
		a.printf("session expired, sign in again\n")
	}
	return nil
}

// Refresh renews the access token now.
func (a *App) Refresh(ctx context.Context) error {
	return a.report(ctx, "refresh", a.authService.Refresh(ctx))
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	return a.report(ctx, "logout", a.authService.Logout(ctx))
}

// report shows err to the user and tracks server reachability. It returns
// err unchanged.
func (a *App) report(ctx context.Context, op string, err error) error {
	if err == nil {
		a.setMode(ModeOnline)
		return nil
	}
	if errors.Is(err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
	}

	a.log.Warn(ctx, op+" failed", "err", err)
	a.Notify(lifecycle.NoticeError, op+": "+err.Error())
	return err
}
