package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
)

// Store is the durable key/value backend. Get returns (nil, nil) for a
// missing key; SetMany writes all pairs atomically.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMany(ctx context.Context, pairs map[string][]byte) error
}

type Session struct {
	mu    sync.RWMutex
	store Store
	state State
	// gen changes on every Start and Clear.
	gen uint64
}

// Load builds a Session from the values persisted in store. Missing keys
// give an empty, logged-out session.
func Load(ctx context.Context, store Store) (*Session, error) {
	s := &Session{store: store}

	rawUser, err := store.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	user, err := decodeUser(rawUser)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyUser, err)
	}

	token, err := store.Get(ctx, KeyToken)
	if err != nil {
		return nil, err
	}
	exp, err := loadTimestamp(ctx, store, KeyTokenExpiresAt)
	if err != nil {
		return nil, err
	}
	refreshExp, err := loadTimestamp(ctx, store, KeyRefreshTokenExpiresAt)
	if err != nil {
		return nil, err
	}

	s.state = State{
		User:                  user,
		AccessToken:           string(token),
		TokenExpiresAt:        exp,
		RefreshTokenExpiresAt: refreshExp,
	}
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// AccessToken returns the current token, "" when logged out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// Generation identifies the current login. Pass it to SetTokenIfCurrent or
// ClearIfCurrent once a call started under it returns.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Start stores the token and user of a new login in one write.
func (s *Session) Start(ctx context.Context, info *models.TokenInfo, user *models.User) error {
	raw, err := encodeUser(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	applyToken(&next, info)
	next.User = copyUser(user)

	pairs := tokenPairs(next)
	pairs[KeyUser] = raw
	if err := s.store.SetMany(ctx, pairs); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.state = next
	s.gen++
	return nil
}

// SetTokenIfCurrent is SetToken for a login still at generation gen. It
// reports false, writing nothing, when the session was cleared or replaced.
func (s *Session) SetTokenIfCurrent(ctx context.Context, info *models.TokenInfo, gen uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.state.AccessToken == "" {
		return false, nil
	}
	return true, s.setTokenLocked(ctx, info)
}

// ClearIfCurrent is Clear unless a login or clear happened after gen was
// read.
func (s *Session) ClearIfCurrent(ctx context.Context, gen uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

// SetUser stores user (nil clears it).
func (s *Session) SetUser(ctx context.Context, user *models.User) error {
	raw, err := encodeUser(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetMany(ctx, map[string][]byte{KeyUser: raw}); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	s.state.User = copyUser(user)
	return nil
}

// SetToken stores info, or clears the token and both expiries when info is
// nil. The three fields are written in one batch.
func (s *Session) SetToken(ctx context.Context, info *models.TokenInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTokenLocked(ctx, info)
}

func (s *Session) setTokenLocked(ctx context.Context, info *models.TokenInfo) error {
	next := s.state
	applyToken(&next, info)

	if err := s.store.SetMany(ctx, tokenPairs(next)); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.state = next
	return nil
}

// Clear drops token and user together in one write.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

func (s *Session) clearLocked(ctx context.Context) error {
	next := s.state
	applyToken(&next, nil)
	next.User = nil

	pairs := tokenPairs(next)
	pairs[KeyUser] = []byte("null")

	if err := s.store.SetMany(ctx, pairs); err != nil {
		return fmt.Errorf("persist cleared session: %w", err)
	}
	s.state = next
	s.gen++
	return nil
}

// SetRefreshTokenExpired sets the latch. The latch is process-local and is
// not persisted.
func (s *Session) SetRefreshTokenExpired(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RefreshTokenExpired = v
}

func applyToken(st *State, info *models.TokenInfo) {
	if info == nil {
		st.AccessToken = ""
		st.TokenExpiresAt = 0
		st.RefreshTokenExpiresAt = 0
		return
	}
	st.AccessToken = info.AccessToken
	st.TokenExpiresAt = info.ExpiresIn
	st.RefreshTokenExpiresAt = info.RefreshTokenExpiresIn
}

func tokenPairs(st State) map[string][]byte {
	return map[string][]byte{
		KeyToken:                 []byte(st.AccessToken),
		KeyTokenExpiresAt:        encodeTimestamp(st.TokenExpiresAt),
		KeyRefreshTokenExpiresAt: encodeTimestamp(st.RefreshTokenExpiresAt),
	}
}

func copyUser(user *models.User) *models.User {
	if user == nil {
		return nil
	}
	u := *user
	return &u
}

func encodeUser(user *models.User) ([]byte, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return raw, nil
}

func decodeUser(raw []byte) (*models.User, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var user *models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// Cleared timestamps are stored as "" rather than "0".
func encodeTimestamp(v int64) []byte {
	if v == 0 {
		return []byte("")
	}
	return []byte(strconv.FormatInt(v, 10))
}

func loadTimestamp(ctx context.Context, store Store, key string) (int64, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}
