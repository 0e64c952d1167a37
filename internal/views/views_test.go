package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"wfquiz/internal/game"
	"wfquiz/internal/viewmodel"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestChoices(t *testing.T) {
	html := renderString(t, Choices(viewmodel.ChoicesFragment{
		Prefix: "/quiz",
		Choices: []viewmodel.Choice{
			{Index: 0, Label: "Button", Visible: true, Enabled: true},
			{Index: 1, Label: "<Label>", Visible: true, Enabled: false},
			{Index: 2, Visible: false},
		},
		Locked: true,
	}))
	for _, want := range []string{
		`id="choices"`,
		`data-locked="true"`,
		`action="/quiz/session/choice/0"`,
		`data-slot="0">Button</button>`,
		`data-slot="1" disabled>&lt;Label&gt;</button>`,
		`data-slot="2" hidden disabled></button>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

func TestGameFragment_TextMode(t *testing.T) {
	html := renderString(t, GameFragment(viewmodel.GameFragment{
		Mode:         string(game.ModeText),
		Round:        3,
		Rounds:       25,
		Running:      true,
		Time:         "0:04.250",
		ImageRef:     "/img/components/TreeView.png",
		Autocomplete: []string{"Button", "TreeView"},
		Input:        `Tree"`,
	}))
	for _, want := range []string{
		`Round <span id="round">3</span> of 25`,
		`data-running="true"`,
		`>0:04.250</p>`,
		`src="/img/components/TreeView.png"`,
		`list="component-names"`,
		`<option value="TreeView">`,
		`value="Tree&#34;"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
	if strings.Contains(html, `id="choices"`) {
		t.Error("text mode should not render choice buttons")
	}
}

func TestPage_SelectsView(t *testing.T) {
	page := viewmodel.Page{
		Title: "wfquiz",
		View:  game.ViewResultsMenu,
		Results: viewmodel.ResultsFragment{
			Rounds: 25,
			Time:   "0:30.850",
			Rate:   "1.234",
		},
	}
	html := renderString(t, Page(page))
	if !strings.Contains(html, `id="results-menu"`) || strings.Contains(html, `id="main-menu"`) {
		t.Errorf("results view not selected: %s", html)
	}
	if !strings.Contains(html, `<dd id="result-rate">1.234</dd>`) {
		t.Errorf("rate missing: %s", html)
	}

	page.View = game.ViewMainMenu
	page.MainMenu.Difficulties = []viewmodel.DifficultyOption{{Value: "easy", Label: "Easy"}}
	html = renderString(t, Page(page))
	if !strings.Contains(html, `name="difficulty" value="easy"`) {
		t.Errorf("main menu missing difficulty: %s", html)
	}
}
