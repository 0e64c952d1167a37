package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestNewRoomStore(t *testing.T) {
	s := NewRoomStore[string](nil)
	if s == nil {
		t.Fatal("NewRoomStore returned nil")
	}
	if s.Clock() == nil {
		t.Error("nil clock should default to the real clock")
	}
}

func TestRoomStore_Create_Get(t *testing.T) {
	s := NewRoomStore[string](clockwork.NewFakeClock())
	s.Create("room1", "state1")
	room, ok := s.Get("room1")
	if !ok {
		t.Fatal("Get returned false for existing room")
	}
	if room.ID != "room1" {
		t.Errorf("room ID %q, want room1", room.ID)
	}
	if room.State != "state1" {
		t.Errorf("room State %q, want state1", room.State)
	}

	if _, ok := s.Get("nonexistent"); ok {
		t.Error("Get should return false for missing ID")
	}
}

func TestRoomStore_Publish(t *testing.T) {
	s := NewRoomStore[string](clockwork.NewFakeClock())
	s.Create("r1", "x")
	hub := s.Broadcaster("r1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s.Publish("r1", "event1")
	if got := <-ch; got != "event1" {
		t.Errorf("got %q, want event1", got)
	}

	// publishing to an unknown room must not panic or create it
	s.Publish("missing", "event1")
	if s.Len() != 1 {
		t.Errorf("Len %d, want 1", s.Len())
	}
}

func TestRoomStore_Delete_ClosesSubscribers(t *testing.T) {
	s := NewRoomStore[string](clockwork.NewFakeClock())
	s.Create("r1", "x")
	ch := s.Broadcaster("r1").Subscribe()
	s.Delete("r1")
	if _, open := <-ch; open {
		t.Error("subscriber channel should be closed on Delete")
	}
	if _, ok := s.Get("r1"); ok {
		t.Error("room should be gone")
	}
}

func TestRoomStore_Reap(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewRoomStore[string](clock)
	s.Create("old", "x")
	clock.Advance(30 * time.Minute)
	s.Create("fresh", "y")
	clock.Advance(31 * time.Minute)

	ids := s.Reap(time.Hour)
	if len(ids) != 1 || ids[0] != "old" {
		t.Fatalf("Reap %v, want [old]", ids)
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Error("fresh room should survive")
	}
}

func TestRoomStore_RunLoop_PublishesAtDeadline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewRoomStore[string](clock)
	s.Create("r1", "x")
	sub := s.Broadcaster("r1").Subscribe()
	defer s.Broadcaster("r1").Unsubscribe(sub)

	deadline := clock.Now().Add(2500 * time.Millisecond)
	tick := func(_ string, now time.Time) (time.Time, []string, bool) {
		if now.Before(deadline) {
			return deadline, nil, false
		}
		return time.Time{}, []string{"choices"}, true
	}
	s.RunLoop("r1", func() string { return "x" }, tick)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("loop never armed its timer: %v", err)
	}
	clock.Advance(2500 * time.Millisecond)

	select {
	case got := <-sub:
		if got != "choices" {
			t.Errorf("got %q, want choices", got)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for loop event")
	}

	deadlineCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	for s.looping("r1") {
		select {
		case <-deadlineCtx.Done():
			t.Fatal("loop did not exit after stop")
		case <-time.After(time.Millisecond):
		}
	}
}
