package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"wfquiz/internal/catalog"
	"wfquiz/pkg/realtime"
)

const (
	StateIdle    = "idle"
	StatePlaying = "playing"
	StateEnded   = "ended"
)

const (
	ViewMainMenu    = "main-menu"
	ViewGameMenu    = "game-menu"
	ViewResultsMenu = "results-menu"
)

var (
	ErrNotPlaying = errors.New("game not in progress")
	ErrInProgress = errors.New("game already in progress")
	ErrWrongInput = errors.New("input not accepted in this difficulty")
	ErrNoSuchSlot = errors.New("no such choice")
)

// Outcome is the result of one answer attempt.
type Outcome int

const (
	OutcomeIncorrect Outcome = iota
	OutcomeCorrect
	// OutcomeLocked means the choices were still cooling down; nothing changed.
	OutcomeLocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeLocked:
		return "locked"
	default:
		return "incorrect"
	}
}

// Results summarise a finished session.
type Results struct {
	Rounds   int           `json:"rounds"`
	GameTime time.Duration `json:"-"`
	Time     string        `json:"time"`
	Rate     string        `json:"rate"`
}

func newResults(rounds int, gameTime time.Duration) Results {
	return Results{
		Rounds:   rounds,
		GameTime: gameTime,
		Time:     FormatTime(gameTime),
		Rate:     fmt.Sprintf("%.3f", SecondsPerRound(gameTime, rounds)),
	}
}

// Session is one player's quiz. A new Start reuses the value.
type Session struct {
	mu      sync.Mutex
	ID      string
	catalog *catalog.Catalog
	rules   Rules
	rng     *rand.Rand

	state      string
	view       string
	difficulty Difficulty
	round      int
	correct    catalog.Item
	slots      []Slot
	input      string
	watch      realtime.Stopwatch
	cooldown   realtime.Cooldown
	results    Results
}

// NewSession creates an idle session on the main menu.
func NewSession(id string, cat *catalog.Catalog, rules Rules, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		ID:       id,
		catalog:  cat,
		rules:    rules,
		rng:      rng,
		state:    StateIdle,
		view:     ViewMainMenu,
		round:    -1,
		cooldown: realtime.Cooldown{Delay: rules.Cooldown},
	}
}

// Start begins a new play-through at round 1.
func (s *Session) Start(d Difficulty, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePlaying {
		return ErrInProgress
	}
	if _, ok := s.rules.Difficulties[d]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDifficulty, d)
	}
	item, err := s.catalog.PickRandom(s.rng)
	if err != nil {
		return fmt.Errorf("start %s: %w", d, err)
	}

	s.difficulty = d
	s.state = StatePlaying
	s.view = ViewGameMenu
	s.round = 1
	s.input = ""
	s.results = Results{}
	s.cooldown.Reset()
	s.watch.Start(now)
	s.showLocked(item)
	return nil
}

// Advance moves to the next round, ending the game after the last one.
func (s *Session) Advance(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	return s.advanceLocked(now)
}

func (s *Session) advanceLocked(now time.Time) error {
	if s.round >= s.rules.Rounds {
		s.round++
		s.endLocked(now)
		return nil
	}
	item, err := s.catalog.PickRandom(s.rng)
	if err != nil {
		return fmt.Errorf("round %d: %w", s.round+1, err)
	}
	s.round++
	s.showLocked(item)
	return nil
}

// showLocked makes item the one to identify this round.
func (s *Session) showLocked(item catalog.Item) {
	s.correct = item
	s.slots = nil
	if c := s.rules.Difficulties[s.difficulty]; c.Mode == ModeChoices {
		s.slots = BuildSlots(s.rng, c.Slots, item, s.catalog.Others(item.Name))
	}
}

// End stops the clock and shows the results.
func (s *Session) End(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	s.endLocked(now)
	return nil
}

func (s *Session) endLocked(now time.Time) {
	gameTime := s.watch.Stop(now)
	s.results = newResults(s.rules.Rounds, gameTime)
	s.state = StateEnded
	s.view = ViewResultsMenu
	s.slots = nil
	s.cooldown.Reset()
}

// ReturnToMenu leaves the results view. Fields stay until the next Start.
func (s *Session) ReturnToMenu() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePlaying {
		return ErrInProgress
	}
	s.state = StateIdle
	s.view = ViewMainMenu
	return nil
}

// SelectChoice answers with the button at slot.
func (s *Session) SelectChoice(slot int, now time.Time) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return OutcomeIncorrect, ErrNotPlaying
	}
	if s.rules.Difficulties[s.difficulty].Mode != ModeChoices {
		return OutcomeIncorrect, ErrWrongInput
	}
	if slot < 0 || slot >= len(s.slots) || !s.slots[slot].Visible {
		return OutcomeIncorrect, fmt.Errorf("%w: %d", ErrNoSuchSlot, slot)
	}
	if !s.cooldown.Enabled(now) {
		return OutcomeLocked, nil
	}
	s.watch.Sample(now)
	if s.slots[slot].Label != s.correct.Name {
		s.cooldown.Trigger(now)
		return OutcomeIncorrect, nil
	}
	if err := s.advanceLocked(now); err != nil {
		return OutcomeCorrect, err
	}
	return OutcomeCorrect, nil
}

// SubmitText checks the current contents of the free-text field. It is meant to
// be called on every edit.
func (s *Session) SubmitText(value string, now time.Time) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return OutcomeIncorrect, ErrNotPlaying
	}
	if s.rules.Difficulties[s.difficulty].Mode != ModeText {
		return OutcomeIncorrect, ErrWrongInput
	}
	s.watch.Sample(now)
	s.input = value
	if !Matches(value, s.correct.Name) {
		return OutcomeIncorrect, nil
	}
	s.input = ""
	if err := s.advanceLocked(now); err != nil {
		return OutcomeCorrect, err
	}
	return OutcomeCorrect, nil
}

// Matches compares a typed answer to a name ignoring case and surrounding space.
func Matches(input, name string) bool {
	return strings.EqualFold(strings.TrimSpace(input), strings.TrimSpace(name))
}

// Tick samples the clock and fires any due cooldown re-enables. Displays call it
// once per frame.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watch.Sample(now)
	s.cooldown.Expire(now)
}

// CooldownFired returns the running count of cooldown re-enables as of now.
func (s *Session) CooldownFired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldown.Expire(now)
	return s.cooldown.Fired()
}

// NextWake returns the next pending cooldown re-enable.
func (s *Session) NextWake() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooldown.NextWake()
}

// CorrectItem returns the item the player must currently identify.
func (s *Session) CorrectItem() catalog.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correct
}

// State returns the lifecycle state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Round returns the current round, -1 before the first Start.
func (s *Session) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// Snapshot captures what the display needs to render.
type Snapshot struct {
	ID           string     `json:"id"`
	State        string     `json:"state"`
	View         string     `json:"view"`
	Difficulty   Difficulty `json:"difficulty,omitempty"`
	Mode         InputMode  `json:"mode,omitempty"`
	Round        int        `json:"round"`
	Rounds       int        `json:"rounds"`
	Running      bool       `json:"running"`
	StartedMs    int64      `json:"started_ms"`
	ElapsedMs    int64      `json:"elapsed_ms"`
	Time         string     `json:"time"`
	ImageRef     string     `json:"image,omitempty"`
	Slots        []Slot     `json:"slots,omitempty"`
	Locked       bool       `json:"locked"`
	Autocomplete []string   `json:"autocomplete,omitempty"`
	Input        string     `json:"input"`
	Results      *Results   `json:"results,omitempty"`
}

// Snapshot ticks the session at now and returns a consistent view of it.
func (s *Session) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watch.Sample(now)
	elapsed := s.watch.Elapsed()
	snap := Snapshot{
		ID:         s.ID,
		State:      s.state,
		View:       s.view,
		Difficulty: s.difficulty,
		Round:      s.round,
		Rounds:     s.rules.Rounds,
		Running:    s.watch.Running(),
		ElapsedMs:  elapsed.Milliseconds(),
		Time:       FormatTime(elapsed),
		Input:      s.input,
	}
	if !s.watch.Started().IsZero() {
		snap.StartedMs = s.watch.Started().UnixMilli()
	}
	if s.state == StateEnded {
		res := s.results
		snap.Results = &res
	}
	if s.state != StatePlaying {
		return snap
	}
	controls := s.rules.Difficulties[s.difficulty]
	snap.Mode = controls.Mode
	snap.ImageRef = s.correct.ImageRef
	switch controls.Mode {
	case ModeChoices:
		snap.Locked = !s.cooldown.Enabled(now)
		snap.Slots = make([]Slot, len(s.slots))
		for i, sl := range s.slots {
			sl.Enabled = sl.Visible && !snap.Locked
			snap.Slots[i] = sl
		}
	case ModeText:
		if controls.Autocomplete {
			snap.Autocomplete = s.catalog.AllNames()
		}
	}
	return snap
}
