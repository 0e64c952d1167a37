package realtime

import "time"

// Stopwatch measures elapsed time since Start. Sample only records while running,
// so the last reading stays frozen after Stop.
type Stopwatch struct {
	started time.Time
	elapsed time.Duration
	running bool
}

// Start resets the reading and begins timing at now.
func (s *Stopwatch) Start(now time.Time) {
	s.started = now
	s.elapsed = 0
	s.running = true
}

// Sample records now-start when running and returns the current reading.
func (s *Stopwatch) Sample(now time.Time) time.Duration {
	if s.running {
		s.elapsed = now.Sub(s.started)
		if s.elapsed < 0 {
			s.elapsed = 0
		}
	}
	return s.elapsed
}

// Stop takes a final sample at now and freezes the reading.
func (s *Stopwatch) Stop(now time.Time) time.Duration {
	d := s.Sample(now)
	s.running = false
	return d
}

// Elapsed returns the last recorded reading.
func (s *Stopwatch) Elapsed() time.Duration { return s.elapsed }

// Running reports whether samples are being recorded.
func (s *Stopwatch) Running() bool { return s.running }

// Started returns the instant of the last Start.
func (s *Stopwatch) Started() time.Time { return s.started }
