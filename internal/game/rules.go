package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"wfquiz/pkg/realtime"
)

// Difficulty selects the answer-input mechanism for a session.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the known difficulties in menu order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// InputMode is how the player answers.
type InputMode string

const (
	ModeChoices InputMode = "choices"
	ModeText    InputMode = "text"
)

const (
	DefaultRounds = 25
	DefaultSlots  = 4
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Controls describes the control set shown for one difficulty.
type Controls struct {
	Mode         InputMode
	Slots        int
	Autocomplete bool
}

// Rules are the per-process game settings shared by every session.
type Rules struct {
	Rounds       int
	Cooldown     time.Duration
	Difficulties map[Difficulty]Controls
}

// DefaultRules returns 25 rounds, a 2.5s penalty, four buttons on easy and
// free text with autocomplete on medium and hard.
func DefaultRules() Rules {
	return Rules{
		Rounds:   DefaultRounds,
		Cooldown: realtime.DefaultCooldown,
		Difficulties: map[Difficulty]Controls{
			Easy:   {Mode: ModeChoices, Slots: DefaultSlots},
			Medium: {Mode: ModeText, Autocomplete: true},
			Hard:   {Mode: ModeText, Autocomplete: true},
		},
	}
}

// Validate checks that the rules can drive a session.
func (r Rules) Validate() error {
	if r.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", r.Rounds)
	}
	if r.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %s", r.Cooldown)
	}
	if len(r.Difficulties) == 0 {
		return errors.New("no difficulties configured")
	}
	for d, c := range r.Difficulties {
		switch c.Mode {
		case ModeChoices:
			if c.Slots < 1 {
				return fmt.Errorf("difficulty %s: choices mode needs at least 1 slot", d)
			}
		case ModeText:
		default:
			return fmt.Errorf("difficulty %s: unknown mode %q", d, c.Mode)
		}
	}
	return nil
}

// Available returns the configured difficulties in menu order.
func (r Rules) Available() []Difficulty {
	out := make([]Difficulty, 0, len(r.Difficulties))
	for _, d := range Difficulties {
		if _, ok := r.Difficulties[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// ParseDifficulty accepts a difficulty name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}
