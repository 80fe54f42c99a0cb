// Package services contains application services for the gophsession client.
// This file defines the authentication service: sign-in, sign-up, logout,
// token refresh and the timer that keeps the access token fresh.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/lifecycle"
	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/client/scheduler"
	"github.com/dmitrijs2005/gophsession/internal/client/session"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultRequestTimeout  = 5 * time.Second
	DefaultRecheckInterval = 10 * time.Second
)

// Navigator is the view router. Current reports the view the user is on.
type Navigator interface {
	Current() lifecycle.RouteMeta
	RedirectTo(route string)
}

// Notifier shows short messages to the user.
type Notifier interface {
	Notify(kind lifecycle.NoticeKind, message string)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - SignIn, SignUp: authenticate, store token and user, enter LoggedIn.
//   - GetUser: reload the user record; token state is untouched.
//   - Logout: end the session on the server, then clear it locally.
//   - Refresh: renew the access token and re-arm the refresh timer.
//   - Init: resume a session loaded from persistence.
//
// Transport errors are returned as is and leave the session unchanged.
type AuthService interface {
	Init(ctx context.Context) error
	SignIn(ctx context.Context, creds models.Credentials) error
	SignUp(ctx context.Context, form models.SignUpForm) error
	GetUser(ctx context.Context) (*models.User, error)
	SetUser(ctx context.Context, user *models.User) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	State() session.State
	RefreshPending() bool
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client   client.Client
	sess     *session.Session
	nav      Navigator
	notifier Notifier
	clock    clockwork.Clock
	log      logging.Logger
	sched    *scheduler.Scheduler

	requestTimeout  time.Duration
	recheckInterval time.Duration
}

type Option func(*authService)

func WithClock(c clockwork.Clock) Option {
	return func(a *authService) { a.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(a *authService) { a.log = l }
}

// WithRequestTimeout bounds each refresh started by the timer.
func WithRequestTimeout(d time.Duration) Option {
	return func(a *authService) { a.requestTimeout = d }
}

// WithRecheckInterval sets how long to wait before trying again after a
// timer-driven refresh that left a live token but no pending timer.
func WithRecheckInterval(d time.Duration) Option {
	return func(a *authService) { a.recheckInterval = d }
}

// NewAuthService constructs an AuthService bound to the given transport and
// session. The service owns the refresh timer.
func NewAuthService(c client.Client, sess *session.Session, nav Navigator, notifier Notifier, opts ...Option) AuthService {
	a := &authService{
		client:          c,
		sess:            sess,
		nav:             nav,
		notifier:        notifier,
		clock:           clockwork.NewRealClock(),
		log:             logging.Discard(),
		requestTimeout:  DefaultRequestTimeout,
		recheckInterval: DefaultRecheckInterval,
	}
	for _, o := range opts {
		o(a)
	}
	a.log = a.log.With("component", "auth")
	a.sched = scheduler.New(a.clock, a.onTimer, a.log.With("component", "scheduler"))
	return a
}

// Init arms the refresh timer for a session that survived a restart.
func (a *authService) Init(ctx context.Context) error {
	st := a.sess.Snapshot()
	if a.sched.Arm(st) {
		a.log.Info(ctx, "session resumed", "expires_at", st.TokenExpiresAt)
	}
	return nil
}

func (a *authService) SignIn(ctx context.Context, creds models.Credentials) error {
	res, err := a.client.SignIn(ctx, creds)
	if err != nil {
		return err
	}
	return a.loggedIn(ctx, res, lifecycle.SignedIn)
}

// SignUp registers and logs in. The user sees the registration notice
// instead of the logged-in one.
func (a *authService) SignUp(ctx context.Context, form models.SignUpForm) error {
	res, err := a.client.SignUp(ctx, form)
	if err != nil {
		return err
	}
	return a.loggedIn(ctx, res, lifecycle.SignedUp)
}

func (a *authService) loggedIn(ctx context.Context, res *models.LoginResult, transition func(lifecycle.RouteMeta) lifecycle.Intent) error {
	if res == nil || res.TokenInfo == nil || res.TokenInfo.AccessToken == "" {
		return common.ErrMalformedResponse
	}
	if err := a.sess.Start(ctx, res.TokenInfo, res.User); err != nil {
		return err
	}

	a.apply(ctx, transition(a.nav.Current()))
	return nil
}

// GetUser fetches the current user and stores it.
func (a *authService) GetUser(ctx context.Context) (*models.User, error) {
	user, err := a.client.FetchCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.sess.SetUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUser stores a user record edited locally.
func (a *authService) SetUser(ctx context.Context, user *models.User) error {
	return a.sess.SetUser(ctx, user)
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}

	a.sched.Disarm()
	if err := a.sess.Clear(ctx); err != nil {
		a.sched.Arm(a.sess.Snapshot())
		return err
	}

	a.apply(ctx, lifecycle.LoggedOutManually(a.nav.Current()))
	return nil
}

// Refresh asks the server for a new access token and branches on its
// verdict. A verdict that arrives after a logout or a new login is dropped.
func (a *authService) Refresh(ctx context.Context) error {
	gen := a.sess.Generation()
	res, err := a.client.Refresh(ctx)
	if err != nil {
		return err
	}
	if res == nil {
		return common.ErrMalformedResponse
	}

	switch res.Status {
	case models.RefreshTokenAlreadyRefreshed:
		a.log.Debug(ctx, "token already refreshed")
		return nil

	case models.RefreshTokenExpired:
		return a.refreshTokenExpired(ctx, gen)

	default:
		if res.TokenInfo == nil || res.TokenInfo.AccessToken == "" {
			return common.ErrMalformedResponse
		}
		ok, err := a.sess.SetTokenIfCurrent(ctx, res.TokenInfo, gen)
		if err != nil {
			return err
		}
		if !ok {
			a.log.Info(ctx, "refresh result dropped, session changed while in flight")
			return nil
		}
		a.sched.Arm(a.sess.Snapshot())
		a.log.Info(ctx, "token refreshed", "expires_at", res.TokenInfo.ExpiresIn)
		return nil
	}
}

// refreshTokenExpired is the forced logout of the login at generation gen.
func (a *authService) refreshTokenExpired(ctx context.Context, gen uint64) error {
	cleared, err := a.sess.ClearIfCurrent(ctx, gen)
	if err != nil {
		return err
	}
	if !cleared {
		a.log.Info(ctx, "refresh token expiry ignored, a newer session exists")
		return nil
	}
	a.sched.Disarm()

	a.apply(ctx, lifecycle.RefreshTokenExpiredLatch(a.sess.Snapshot().RefreshTokenExpired))
	a.apply(ctx, lifecycle.EnterLoggedOut(a.nav.Current(), false))
	return nil
}

func (a *authService) State() session.State {
	return a.sess.Snapshot()
}

func (a *authService) RefreshPending() bool {
	return a.sched.Pending()
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close stops the refresh timer and releases the client.
func (a *authService) Close(ctx context.Context) error {
	a.sched.Disarm()
	return a.client.Close()
}

// apply carries out a transition intent.
func (a *authService) apply(ctx context.Context, in lifecycle.Intent) {
	if in.Noop() {
		return
	}

	if in.Disarm {
		a.sched.Disarm()
	}
	if in.ClearLatch {
		a.sess.SetRefreshTokenExpired(false)
	}
	if in.SetLatch {
		a.sess.SetRefreshTokenExpired(true)
	}
	if in.Arm {
		a.sched.Arm(a.sess.Snapshot())
	}

	a.log.Info(ctx, "session transition", "phase", in.Phase.String(), "manual", in.Manual)

	if in.RedirectTo != "" {
		a.nav.RedirectTo(in.RedirectTo)
	}
	for _, n := range in.Notices {
		a.notifier.Notify(n.Kind, n.Message)
	}
}

// onTimer runs when the refresh timer fires. The expiry captured at arm time
// may be stale after a suspend, so the session is checked again first.
func (a *authService) onTimer(ctx context.Context) {
	st := a.sess.Snapshot()
	if !st.IsLoggedIn() {
		a.log.Debug(ctx, "refresh timer fired without a token")
		return
	}
	if !st.NeedsRefresh(a.clock.Now()) {
		a.sched.Arm(st)
		return
	}

	rctx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()

	if err := a.Refresh(rctx); err != nil {
		a.log.Warn(ctx, "scheduled refresh failed", "err", err)
	}
	a.recheck(ctx)
}

// recheck keeps a refreshable session on a timer when the last refresh did
// not re-arm it. An expired access token is retried until the refresh token
// runs out.
func (a *authService) recheck(ctx context.Context) {
	if a.sched.Pending() {
		return
	}
	st := a.sess.Snapshot()
	if !st.IsLoggedIn() {
		return
	}
	now := a.clock.Now()
	if st.IsExpired(now) && !st.RefreshTokenLive(now) {
		a.log.Warn(ctx, "access and refresh tokens expired, refresh timer left disarmed",
			"expires_at", st.TokenExpiresAt, "refresh_expires_at", st.RefreshTokenExpiresAt)
		return
	}
	a.sched.ArmAfter(a.recheckInterval)
}
