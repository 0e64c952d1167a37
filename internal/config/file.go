package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"wfquiz/internal/game"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// File is the roster file: the component names and the control set of each
// difficulty.
type File struct {
	Components   []string                  `yaml:"components"`
	Difficulties map[string]DifficultyFile `yaml:"difficulties"`
}

// DifficultyFile configures one difficulty.
type DifficultyFile struct {
	Mode         string `yaml:"mode"`
	Choices      int    `yaml:"choices"`
	Autocomplete *bool  `yaml:"autocomplete"`
}

// DefaultFile returns the built-in roster.
func DefaultFile() *File {
	f, err := ParseFile(defaultCatalog)
	if err != nil {
		panic("config: embedded catalog.yaml: " + err.Error())
	}
	return f
}

// LoadFile reads a roster file from path, or the built-in roster when path is empty.
func LoadFile(path string) (*File, error) {
	if path == "" {
		return DefaultFile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFile decodes a roster file. Unknown keys are rejected.
func ParseFile(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog file is empty")
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Components) == 0 {
		return nil, errors.New("catalog file lists no components")
	}
	return &f, nil
}

func (f *File) controls(defaultChoices int) (map[game.Difficulty]game.Controls, error) {
	out := make(map[game.Difficulty]game.Controls, len(f.Difficulties))
	for name, df := range f.Difficulties {
		d, err := game.ParseDifficulty(name)
		if err != nil {
			return nil, err
		}
		ctl := game.Controls{Mode: game.InputMode(df.Mode)}
		switch ctl.Mode {
		case game.ModeChoices:
			ctl.Slots = df.Choices
			if ctl.Slots == 0 {
				ctl.Slots = defaultChoices
			}
		case game.ModeText:
			ctl.Autocomplete = df.Autocomplete == nil || *df.Autocomplete
		default:
			return nil, fmt.Errorf("difficulty %s: unknown mode %q", name, df.Mode)
		}
		out[d] = ctl
	}
	return out, nil
}
