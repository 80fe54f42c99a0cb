package session

import (
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
)

// RefreshMargin is how long before expiry an access token is renewed.
const RefreshMargin = 50 * time.Second

// State is a point-in-time copy of the session.
type State struct {
	User                  *models.User
	AccessToken           string
	TokenExpiresAt        int64
	RefreshTokenExpiresAt int64
	RefreshTokenExpired   bool
}

// IsLoggedIn reports whether an access token is held.
func (s State) IsLoggedIn() bool {
	return s.AccessToken != ""
}

// NeedsRefresh reports whether a token is held and now has reached
// TokenExpiresAt minus RefreshMargin.
func (s State) NeedsRefresh(now time.Time) bool {
	if !s.IsLoggedIn() {
		return false
	}
	return !now.Before(s.refreshAt())
}

// IsExpired reports whether TokenExpiresAt lies in the past. An absent
// expiry reads as expired.
func (s State) IsExpired(now time.Time) bool {
	return s.TokenExpiresAt < now.Unix()
}

// RefreshTokenLive reports whether RefreshTokenExpiresAt lies ahead of now.
// An absent expiry reads as dead.
func (s State) RefreshTokenLive(now time.Time) bool {
	return s.RefreshTokenExpiresAt >= now.Unix()
}

// RefreshDelay is the time left until NeedsRefresh turns true, never negative.
func (s State) RefreshDelay(now time.Time) time.Duration {
	d := s.refreshAt().Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (s State) refreshAt() time.Time {
	return time.Unix(s.TokenExpiresAt, 0).Add(-RefreshMargin)
}

// clone copies the user so callers cannot mutate the held record.
func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
