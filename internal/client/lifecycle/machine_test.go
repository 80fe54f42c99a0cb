package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func route(t *testing.T, name string) RouteMeta {
	t.Helper()
	m, ok := Route(name)
	if !ok {
		t.Fatalf("unknown route %q", name)
	}
	return m
}

func TestEnterLoggedIn(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		redirect string
	}{
		{"from signin", RouteSignIn, RouteProfile},
		{"from signup", RouteSignUp, RouteProfile},
		{"from home", RouteHome, ""},
		{"from profile", RouteProfile, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := EnterLoggedIn(route(t, tt.current))

			assert.Equal(t, LoggedIn, in.Phase)
			assert.True(t, in.Arm)
			assert.True(t, in.ClearLatch)
			assert.False(t, in.Disarm)
			assert.Equal(t, tt.redirect, in.RedirectTo)
			assert.Empty(t, in.Notices)
		})
	}
}

func TestEnterLoggedOut(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		manual   bool
		redirect string
	}{
		{"profile requires auth", RouteProfile, true, RouteSignIn},
		{"signin is guest only", RouteSignIn, false, RouteHome},
		{"home stays", RouteHome, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := EnterLoggedOut(route(t, tt.current), tt.manual)

			assert.Equal(t, LoggedOut, in.Phase)
			assert.True(t, in.Disarm)
			assert.False(t, in.Arm)
			assert.Equal(t, tt.manual, in.Manual)
			assert.Equal(t, tt.redirect, in.RedirectTo)
		})
	}
}

func TestRefreshTokenExpiredLatch(t *testing.T) {
	in := RefreshTokenExpiredLatch(false)
	assert.Equal(t, RefreshTokenExpired, in.Phase)
	assert.True(t, in.SetLatch)
	assert.True(t, in.Disarm)
	assert.Equal(t, []Notice{{Kind: NoticeInfo, Message: MsgLogInAgain}}, in.Notices)

	again := RefreshTokenExpiredLatch(true)
	assert.True(t, again.Noop(), "already latched must not notify twice")
}

func TestCompositeTransitions(t *testing.T) {
	in := SignedIn(route(t, RouteSignIn))
	assert.Equal(t, RouteProfile, in.RedirectTo)
	assert.Equal(t, []Notice{{Kind: NoticeSuccess, Message: MsgLoggedIn}}, in.Notices)

	in = SignedUp(route(t, RouteSignUp))
	assert.Equal(t, []Notice{{Kind: NoticeSuccess, Message: MsgRegistered}}, in.Notices)

	in = LoggedOutManually(route(t, RouteProfile))
	assert.True(t, in.Manual)
	assert.Equal(t, RouteSignIn, in.RedirectTo)
	assert.Equal(t, []Notice{{Kind: NoticeSuccess, Message: MsgLoggedOut}}, in.Notices)
}

func TestWithNotice_DoesNotAliasOriginal(t *testing.T) {
	base := Intent{Notices: make([]Notice, 1, 4)}
	a := base.WithNotice(NoticeInfo, "a")
	b := base.WithNotice(NoticeError, "b")

	assert.Len(t, base.Notices, 1)
	assert.Equal(t, "a", a.Notices[1].Message)
	assert.Equal(t, "b", b.Notices[1].Message)
}

func TestIntentNoop(t *testing.T) {
	assert.True(t, Intent{}.Noop())
	assert.True(t, Intent{Phase: LoggedIn, Manual: true}.Noop())
	assert.False(t, Intent{RedirectTo: RouteHome}.Noop())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "logged_out", LoggedOut.String())
	assert.Equal(t, "logged_in", LoggedIn.String())
	assert.Equal(t, "refresh_token_expired", RefreshTokenExpired.String())
}

func TestRoute_Unknown(t *testing.T) {
	_, ok := Route("nope")
	assert.False(t, ok)
}
