package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wfquiz/internal/game"
)

func TestDefault_Validate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr %q, want 0.0.0.0:8080", cfg.Addr())
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"no rounds", func(c *Config) { c.Rounds = 0 }},
		{"no choices", func(c *Config) { c.Choices = 0 }},
		{"negative cooldown", func(c *Config) { c.Cooldown = -time.Second }},
		{"negative session timeout", func(c *Config) { c.SessionTimeout = -time.Second }},
		{"empty image dir", func(c *Config) { c.ImageDir = " " }},
		{"relative prefix", func(c *Config) { c.Prefix = "quiz" }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate returned nil", tc.name)
		}
	}
}

func TestDefaultFile(t *testing.T) {
	f := DefaultFile()
	if len(f.Components) != 27 {
		t.Fatalf("components %d, want 27", len(f.Components))
	}
	if f.Components[0] != "Button" || f.Components[26] != "VScrollBar" {
		t.Errorf("unexpected roster order: first %q last %q", f.Components[0], f.Components[26])
	}
}

func TestConfig_Rules_DefaultFile(t *testing.T) {
	cfg := Default()
	rules, err := cfg.Rules(DefaultFile())
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}
	if rules.Rounds != 25 || rules.Cooldown != 2500*time.Millisecond {
		t.Errorf("Rounds %d Cooldown %s, want 25 and 2.5s", rules.Rounds, rules.Cooldown)
	}
	easy := rules.Difficulties[game.Easy]
	if easy.Mode != game.ModeChoices || easy.Slots != 4 {
		t.Errorf("easy %+v, want 4 choices", easy)
	}
	for _, d := range []game.Difficulty{game.Medium, game.Hard} {
		c := rules.Difficulties[d]
		if c.Mode != game.ModeText || !c.Autocomplete {
			t.Errorf("%s %+v, want text with autocomplete", d, c)
		}
	}
}

func TestConfig_Rules_ChoicesFlag(t *testing.T) {
	cfg := Default()
	cfg.Choices = 6
	rules, err := cfg.Rules(nil)
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}
	if got := rules.Difficulties[game.Easy].Slots; got != 6 {
		t.Errorf("easy slots %d, want 6", got)
	}

	f, err := ParseFile([]byte("components: [Button]\ndifficulties:\n  easy:\n    mode: choices\n"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	rules, err = cfg.Rules(f)
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}
	if got := rules.Difficulties[game.Easy].Slots; got != 6 {
		t.Errorf("easy slots %d, want --choices fallback 6", got)
	}
	if _, ok := rules.Difficulties[game.Hard]; ok {
		t.Error("hard should not be configured")
	}
}

func TestConfig_Rules_ChoicesFlagDefaultFile(t *testing.T) {
	cfg := Default()
	cfg.Choices = 6
	f, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	rules, err := cfg.Rules(f)
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}
	if got := rules.Difficulties[game.Easy].Slots; got != 6 {
		t.Errorf("easy slots %d with --choices 6 and the built-in roster, want 6", got)
	}
}

func TestConfig_Rules_BadDifficulty(t *testing.T) {
	cfg := Default()
	f, err := ParseFile([]byte("components: [Button]\ndifficulties:\n  insane:\n    mode: text\n"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if _, err := cfg.Rules(f); !errors.Is(err, game.ErrUnknownDifficulty) {
		t.Errorf("err %v, want ErrUnknownDifficulty", err)
	}

	f, err = ParseFile([]byte("components: [Button]\ndifficulties:\n  easy:\n    mode: slider\n"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if _, err := cfg.Rules(f); err == nil || !strings.Contains(err.Error(), "slider") {
		t.Errorf("err %v, want unknown mode error", err)
	}
}

func TestParseFile_Errors(t *testing.T) {
	for _, in := range []string{"", "components: []\n", "components: [Button]\ncolour: red\n", "components: {"} {
		if _, err := ParseFile([]byte(in)); err == nil {
			t.Errorf("ParseFile(%q) returned nil error", in)
		}
	}
}

func TestLoadFile(t *testing.T) {
	f, err := LoadFile("")
	if err != nil || len(f.Components) != 27 {
		t.Fatalf("LoadFile(\"\") = %v, %v", f, err)
	}

	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte("components:\n  - Button\n  - Label\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err = LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(f.Components) != 2 || f.Components[1] != "Label" {
		t.Errorf("components %v", f.Components)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err %v, want ErrNotExist", err)
	}
}
