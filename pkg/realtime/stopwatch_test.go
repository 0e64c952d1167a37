package realtime

import (
	"testing"
	"time"
)

func TestStopwatch_SampleWhileRunning(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var s Stopwatch
	if s.Running() {
		t.Fatal("zero Stopwatch should not be running")
	}
	if got := s.Sample(start.Add(time.Second)); got != 0 {
		t.Errorf("Sample before Start %v, want 0", got)
	}
	s.Start(start)
	if got := s.Sample(start.Add(1500 * time.Millisecond)); got != 1500*time.Millisecond {
		t.Errorf("Sample %v, want 1.5s", got)
	}
}

func TestStopwatch_StopFreezes(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var s Stopwatch
	s.Start(start)
	s.Stop(start.Add(7004 * time.Millisecond))
	if got := s.Sample(start.Add(time.Hour)); got != 7004*time.Millisecond {
		t.Errorf("Sample after Stop %v, want 7.004s", got)
	}
	if s.Running() {
		t.Error("Running after Stop")
	}

	s.Start(start.Add(time.Hour))
	if s.Elapsed() != 0 {
		t.Errorf("Elapsed after restart %v, want 0", s.Elapsed())
	}
}
