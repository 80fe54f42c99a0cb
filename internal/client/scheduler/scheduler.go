// Package scheduler owns the single pending access-token refresh timer.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/session"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/jonboulle/clockwork"
)

// FireFunc runs when the timer expires.
type FireFunc func(ctx context.Context)

// Scheduler holds at most one outstanding timer. Arm, ArmAfter and Disarm
// are the only mutators; each arm replaces the previous timer.
type Scheduler struct {
	mu    sync.Mutex
	clock clockwork.Clock
	fire  FireFunc
	log   logging.Logger

	timer clockwork.Timer
	// gen identifies the live timer; a callback carrying an older value
	// lost a race with Arm or Disarm and must not fire.
	gen uint64
}

func New(clock clockwork.Clock, fire FireFunc, log logging.Logger) *Scheduler {
	return &Scheduler{clock: clock, fire: fire, log: log}
}

// Arm schedules a refresh RefreshMargin before the token expires, or
// immediately when that moment has passed. It does nothing and returns false
// when st holds no token.
func (s *Scheduler) Arm(st session.State) bool {
	if !st.IsLoggedIn() {
		return false
	}
	s.ArmAfter(st.RefreshDelay(s.clock.Now()))
	return true
}

// ArmAfter schedules the callback after d, replacing any pending timer.
func (s *Scheduler) ArmAfter(d time.Duration) {
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() { s.run(gen) })

	s.log.Debug(context.Background(), "refresh timer armed", "delay", d)
}

// Disarm cancels the pending timer, if any.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.log.Debug(context.Background(), "refresh timer disarmed")
	}
	s.stopLocked()
	s.gen++
}

// Pending reports whether a timer is outstanding.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) run(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	s.fire(context.Background())
}
