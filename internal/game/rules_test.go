package game

import (
	"errors"
	"testing"
)

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if r.Rounds != 25 {
		t.Errorf("Rounds %d, want 25", r.Rounds)
	}
	got := r.Available()
	if len(got) != 3 || got[0] != Easy || got[1] != Medium || got[2] != Hard {
		t.Errorf("Available %v", got)
	}
}

func TestRules_Validate(t *testing.T) {
	r := DefaultRules()
	r.Rounds = 0
	if r.Validate() == nil {
		t.Error("zero rounds should fail")
	}

	r = DefaultRules()
	r.Difficulties[Easy] = Controls{Mode: ModeChoices}
	if r.Validate() == nil {
		t.Error("choices without slots should fail")
	}

	r = DefaultRules()
	r.Difficulties[Hard] = Controls{Mode: "voice"}
	if r.Validate() == nil {
		t.Error("unknown mode should fail")
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Medium ")
	if err != nil || d != Medium {
		t.Errorf("ParseDifficulty = %q, %v", d, err)
	}
	if _, err := ParseDifficulty("nightmare"); !errors.Is(err, ErrUnknownDifficulty) {
		t.Errorf("err %v, want ErrUnknownDifficulty", err)
	}
}
