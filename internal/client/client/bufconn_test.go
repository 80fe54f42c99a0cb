package client

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/authtest"
	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serverT0 = time.Unix(1700000000, 0)

func startAuthServer(t *testing.T, opts ...authtest.Option) (*authtest.Server, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(serverT0)
	srv := authtest.NewServer(append([]authtest.Option{authtest.WithClock(clock)}, opts...)...)
	t.Cleanup(func() { _ = srv.Close() })
	return srv, clock
}

// dialAuthServer returns a client whose access token is whatever the last
// login or refresh handed out.
func dialAuthServer(t *testing.T, srv *authtest.Server, jar CookieJar) (*GRPCClient, *string) {
	t.Helper()
	token := new(string)
	opts := []Option{
		WithTokenSource(func() string { return *token }),
		WithDialOptions(srv.DialOptions()...),
		WithTimeout(5 * time.Second),
	}
	if jar != nil {
		opts = append(opts, WithCookieJar(jar))
	}
	c, err := NewGRPCClient(srv.Target(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, token
}

func TestGRPCClient_FullFlowOverBufconn(t *testing.T) {
	srv, _ := startAuthServer(t)
	c, token := dialAuthServer(t, srv, nil)
	ctx := context.Background()

	res, err := c.SignUp(ctx, models.SignUpForm{Email: "alice@example.org", Name: "Alice", Password: []byte("pw")})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.org", res.User.Email)
	assert.Equal(t, serverT0.Add(5*time.Minute).Unix(), res.TokenInfo.ExpiresIn)
	assert.Equal(t, serverT0.Add(24*time.Hour).Unix(), res.TokenInfo.RefreshTokenExpiresIn)

	_, err = c.FetchCurrentUser(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	*token = res.TokenInfo.AccessToken
	user, err := c.FetchCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Logout(ctx))

	rr, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RefreshTokenExpired, rr.Status)
}

func TestGRPCClient_RefreshRotatesJarToken(t *testing.T) {
	srv, _ := startAuthServer(t)
	srv.AddUser("alice@example.org", "Alice", "pw")
	jar := &memoryJar{}
	c, _ := dialAuthServer(t, srv, jar)
	ctx := context.Background()

	_, err := c.SignIn(ctx, models.Credentials{Email: "alice@example.org", Password: []byte("pw")})
	require.NoError(t, err)
	first, err := jar.Get(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	rr, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RefreshOK, rr.Status)
	require.NotNil(t, rr.TokenInfo)
	assert.NotEmpty(t, rr.TokenInfo.AccessToken)

	second, err := jar.Get(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestGRPCClient_DuplicateRefreshReportsAlreadyRefreshed(t *testing.T) {
	srv, _ := startAuthServer(t)
	srv.AddUser("alice@example.org", "Alice", "pw")
	jar := &memoryJar{}
	c, _ := dialAuthServer(t, srv, jar)
	ctx := context.Background()

	_, err := c.SignIn(ctx, models.Credentials{Email: "alice@example.org", Password: []byte("pw")})
	require.NoError(t, err)
	stale, err := jar.Get(ctx)
	require.NoError(t, err)

	rr, err := c.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, models.RefreshOK, rr.Status)

	// A second tab still holding the old refresh token.
	require.NoError(t, jar.Set(ctx, stale))
	rr, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RefreshTokenAlreadyRefreshed, rr.Status)
	assert.Nil(t, rr.TokenInfo)
}

func TestGRPCClient_ExpiredRefreshToken(t *testing.T) {
	srv, clock := startAuthServer(t, authtest.WithRefreshTTL(time.Hour))
	srv.AddUser("alice@example.org", "Alice", "pw")
	c, _ := dialAuthServer(t, srv, nil)
	ctx := context.Background()

	_, err := c.SignIn(ctx, models.Credentials{Email: "alice@example.org", Password: []byte("pw")})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	rr, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RefreshTokenExpired, rr.Status)
}

func TestGRPCClient_ExpiryFromJWTWhenServerOmitsIt(t *testing.T) {
	srv, _ := startAuthServer(t, authtest.WithoutExpiresIn(), authtest.WithAccessTTL(2*time.Minute))
	srv.AddUser("alice@example.org", "Alice", "pw")
	c, _ := dialAuthServer(t, srv, nil)

	res, err := c.SignIn(context.Background(), models.Credentials{Email: "alice@example.org", Password: []byte("pw")})
	require.NoError(t, err)
	assert.Equal(t, serverT0.Add(2*time.Minute).Unix(), res.TokenInfo.ExpiresIn)
}

func TestGRPCClient_WrongPassword(t *testing.T) {
	srv, _ := startAuthServer(t)
	srv.AddUser("alice@example.org", "Alice", "pw")
	c, _ := dialAuthServer(t, srv, nil)

	_, err := c.SignIn(context.Background(), models.Credentials{Email: "alice@example.org", Password: []byte("bad")})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
