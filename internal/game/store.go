package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"wfquiz/internal/catalog"
	"wfquiz/pkg/realtime"
)

// Events published to a session's subscribers.
const (
	EventView    = "view"
	EventChoices = "choices"
)

// Store holds sessions and delegates to realtime.RoomStore for broadcast and timing.
type Store struct {
	r       *realtime.RoomStore[*Session]
	catalog *catalog.Catalog
	rules   Rules

	seedMu sync.Mutex
	seed   *rand.Rand
}

// NewStore creates an in-memory session store. A nil clock means wall time.
func NewStore(cat *catalog.Catalog, rules Rules, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		r:       realtime.NewRoomStore[*Session](clock),
		catalog: cat,
		rules:   rules,
		seed:    rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
}

// Now is the store clock's current time.
func (s *Store) Now() time.Time {
	return s.r.Clock().Now()
}

// Catalog returns the shared catalog.
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

// Rules returns the shared rules.
func (s *Store) Rules() Rules {
	return s.rules
}

// CreateSession registers a fresh idle session.
func (s *Store) CreateSession() *Session {
	s.seedMu.Lock()
	rng := rand.New(rand.NewSource(s.seed.Int63()))
	s.seedMu.Unlock()
	sess := NewSession(uuid.NewString(), s.catalog, s.rules, rng)
	s.r.Create(sess.ID, sess)
	return sess
}

// GetSession returns a session by ID if it exists.
func (s *Store) GetSession(id string) (*Session, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	return s.r.Len()
}

// Broadcaster returns the broadcaster for a session.
func (s *Store) Broadcaster(id string) *realtime.Broadcaster[string] {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a session update.
func (s *Store) Publish(id string, events ...string) {
	for _, e := range events {
		s.r.Publish(id, e)
	}
}

// EnsureCooldownLoop runs a loop that publishes EventChoices each time one of the
// session's cooldown deadlines passes. The loop exits when none are pending.
func (s *Store) EnsureCooldownLoop(id string) {
	seen := -1
	getState := func() *Session {
		room, ok := s.r.Get(id)
		if !ok {
			return nil
		}
		return room.State
	}
	tick := func(sess *Session, now time.Time) (time.Time, []string, bool) {
		if sess == nil {
			return time.Time{}, nil, true
		}
		fired := sess.CooldownFired(now)
		var events []string
		if seen >= 0 && fired > seen {
			events = []string{EventChoices}
		}
		seen = fired
		next, ok := sess.NextWake()
		if !ok {
			return time.Time{}, events, true
		}
		return next, events, false
	}
	s.r.RunLoop(id, getState, tick)
}

// Reap drops sessions idle for longer than maxIdle.
func (s *Store) Reap(maxIdle time.Duration) []string {
	return s.r.Reap(maxIdle)
}

// ReapLoop reaps idle sessions until ctx is done.
func (s *Store) ReapLoop(ctx context.Context, maxIdle time.Duration) {
	s.r.ReapLoop(ctx, maxIdle, func(ids []string) {
		log.Debug().Int("count", len(ids)).Msg("reaped idle sessions")
	})
}
