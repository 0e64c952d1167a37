package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Room holds state and a broadcaster for one room.
type Room[T any] struct {
	ID         string
	State      T
	hub        *Broadcaster[string]
	lastActive time.Time
}

// RoomStore manages rooms, their broadcasters and their timing loops.
type RoomStore[T any] struct {
	clock clockwork.Clock

	mu    sync.RWMutex
	rooms map[string]*Room[T]
	loops map[string]context.CancelFunc
	wakes map[string]chan struct{}
}

// NewRoomStore creates an empty room store driven by clock.
func NewRoomStore[T any](clock clockwork.Clock) *RoomStore[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoomStore[T]{
		clock: clock,
		rooms: make(map[string]*Room[T]),
		loops: make(map[string]context.CancelFunc),
		wakes: make(map[string]chan struct{}),
	}
}

// Clock returns the clock the store schedules against.
func (s *RoomStore[T]) Clock() clockwork.Clock {
	return s.clock
}

// Create adds a room with the given id and state, and a new Broadcaster.
func (s *RoomStore[T]) Create(id string, state T) *Room[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Room[T]{ID: id, State: state, hub: NewBroadcaster[string](), lastActive: s.clock.Now()}
	s.rooms[id] = r
	return r
}

// Get returns the room by ID if it exists and marks it active.
func (s *RoomStore[T]) Get(id string) (*Room[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if ok {
		r.lastActive = s.clock.Now()
	}
	return r, ok
}

// Len reports the number of rooms.
func (s *RoomStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Delete removes a room, stops its loop and disconnects its subscribers.
func (s *RoomStore[T]) Delete(id string) {
	s.mu.Lock()
	r, ok := s.rooms[id]
	delete(s.rooms, id)
	if cancel, running := s.loops[id]; running {
		cancel()
	}
	s.mu.Unlock()
	if ok && r.hub != nil {
		r.hub.Close()
	}
}

// Publish notifies subscribers of the room's broadcaster.
func (s *RoomStore[T]) Publish(id string, event string) {
	s.Broadcaster(id).Publish(event)
}

// Broadcaster returns the broadcaster for the room, creating it if the room exists but had none.
func (s *RoomStore[T]) Broadcaster(id string) *Broadcaster[string] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		// Unknown rooms get a detached hub so publishers never need a nil check.
		return NewBroadcaster[string]()
	}
	if r.hub == nil {
		r.hub = NewBroadcaster[string]()
	}
	return r.hub
}

// Reap deletes rooms idle for longer than maxIdle and returns their IDs.
func (s *RoomStore[T]) Reap(maxIdle time.Duration) []string {
	cutoff := s.clock.Now().Add(-maxIdle)
	var stale []string
	s.mu.RLock()
	for id, r := range s.rooms {
		if r.lastActive.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()
	for _, id := range stale {
		s.Delete(id)
	}
	return stale
}

// ReapLoop runs Reap every maxIdle/2 until ctx is done. onReap may be nil.
func (s *RoomStore[T]) ReapLoop(ctx context.Context, maxIdle time.Duration, onReap func(ids []string)) {
	if maxIdle <= 0 {
		return
	}
	ticker := s.clock.NewTicker(maxIdle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ids := s.Reap(maxIdle); len(ids) > 0 && onReap != nil {
				onReap(ids)
			}
		}
	}
}

// TickFunc is called by RunLoop to determine the next wake time and events to publish.
// stop true means exit the loop once events are published.
type TickFunc[T any] func(state T, now time.Time) (next time.Time, events []string, stop bool)

// RunLoop starts a timing loop for the room. If a loop already exists for id it is
// woken instead, so it recomputes against the latest state.
func (s *RoomStore[T]) RunLoop(id string, getState func() T, tick TickFunc[T]) {
	s.mu.Lock()
	if wake, ok := s.wakes[id]; ok {
		signal(wake)
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	wake := make(chan struct{}, 1)
	s.loops[id] = cancel
	s.wakes[id] = wake
	s.mu.Unlock()

	go func() {
		defer cancel()
		for {
			next, events, stop := tick(getState(), s.clock.Now())
			for _, e := range events {
				s.Publish(id, e)
			}
			if stop && s.release(id, wake) {
				return
			}
			if stop {
				continue
			}
			wait := next.Sub(s.clock.Now())
			if wait < 0 {
				wait = 0
			}
			timer := s.clock.NewTimer(wait)
			select {
			case <-ctx.Done():
				stopAndDrain(timer)
				s.release(id, nil)
				return
			case <-timer.Chan():
			case <-wake:
				stopAndDrain(timer)
			}
		}
	}()
}

// release unregisters the loop unless a wake arrived after the last tick, in which
// case the loop must run again. A nil wake releases unconditionally.
func (s *RoomStore[T]) release(id string, wake chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wake != nil {
		select {
		case <-wake:
			return false
		default:
		}
	}
	delete(s.loops, id)
	delete(s.wakes, id)
	return true
}

// looping reports whether a timing loop is registered for id.
func (s *RoomStore[T]) looping(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.loops[id]
	return ok
}

func signal(wake chan struct{}) {
	select {
	case wake <- struct{}{}:
	default:
	}
}

func stopAndDrain(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
