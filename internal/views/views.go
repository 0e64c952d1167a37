// Package views renders the quiz page and the fragments pushed over the stream.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"wfquiz/internal/game"
	"wfquiz/internal/viewmodel"
)

// Element IDs the stream targets.
const (
	ViewID    = "view"
	ChoicesID = "choices"
)

func esc(s string) string {
	return templ.EscapeString(s)
}

func write(w io.Writer, b *strings.Builder) error {
	_, err := io.WriteString(w, b.String())
	return err
}

// Page renders the full document with the active view inside it.
func Page(p viewmodel.Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, `<title>%s</title>`, esc(p.Title))
		fmt.Fprintf(&b, `<link rel="stylesheet" href="%s/static/app.css">`, esc(p.Prefix))
		fmt.Fprintf(&b, `<script defer src="%s/static/app.js"></script>`, esc(p.Prefix))
		fmt.Fprintf(&b, `</head><body data-prefix="%s">`, esc(p.Prefix))
		fmt.Fprintf(&b, `<header><h1>%s</h1>`, esc(p.Title))
		if p.ShareURL != "" {
			fmt.Fprintf(&b, `<a class="share" href="%s" title="Share this quiz">Share</a>`, esc(p.ShareURL))
		}
		b.WriteString(`</header>`)
		if p.ErrorText != "" {
			fmt.Fprintf(&b, `<p class="error" role="alert">%s</p>`, esc(p.ErrorText))
		}
		fmt.Fprintf(&b, `<main id="%s" data-view="%s">`, ViewID, esc(p.View))
		if err := write(w, &b); err != nil {
			return err
		}
		b.Reset()

		if err := View(p).Render(ctx, w); err != nil {
			return err
		}

		b.WriteString(`</main></body></html>`)
		return write(w, &b)
	})
}

// View renders whichever menu p.View names.
func View(p viewmodel.Page) templ.Component {
	switch p.View {
	case game.ViewGameMenu:
		return GameFragment(p.Game)
	case game.ViewResultsMenu:
		return ResultsFragment(p.Results)
	default:
		return MainMenu(p.MainMenu)
	}
}

// MainMenu renders one start button per configured difficulty.
func MainMenu(m viewmodel.MainMenu) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section id="main-menu" class="menu">`)
		b.WriteString(`<p>Name the Windows Forms component in the picture.</p>`)
		for _, d := range m.Difficulties {
			fmt.Fprintf(&b, `<form method="post" action="%s/session/start">`, esc(m.Prefix))
			fmt.Fprintf(&b, `<input type="hidden" name="difficulty" value="%s">`, esc(d.Value))
			fmt.Fprintf(&b, `<button type="submit" class="start" data-difficulty="%s">%s</button>`, esc(d.Value), esc(d.Label))
			b.WriteString(`</form>`)
		}
		b.WriteString(`</section>`)
		return write(w, &b)
	})
}

// GameFragment renders the timer, the prompt image and the input controls of the
// session's difficulty.
func GameFragment(g viewmodel.GameFragment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section id="game-menu" class="menu" data-round-key="%s">`, esc(g.RoundKey))
		fmt.Fprintf(&b, `<p class="round">Round <span id="round">%d</span> of %d</p>`, g.Round, g.Rounds)
		fmt.Fprintf(&b, `<p id="timer" data-running="%t" data-elapsed-ms="%d" data-started-ms="%d">%s</p>`,
			g.Running, g.ElapsedMs, g.StartedMs, esc(g.Time))
		fmt.Fprintf(&b, `<img id="component" src="%s" alt="Which component is this?">`, esc(g.ImageRef))
		if err := write(w, &b); err != nil {
			return err
		}
		b.Reset()

		switch g.Mode {
		case string(game.ModeChoices):
			if err := Choices(g.Choices).Render(ctx, w); err != nil {
				return err
			}
		case string(game.ModeText):
			fmt.Fprintf(&b, `<form id="answer" method="post" action="%s/session/answer" autocomplete="off">`, esc(g.Prefix))
			b.WriteString(`<input id="answer-input" name="answer" type="text" autofocus`)
			fmt.Fprintf(&b, ` value="%s"`, esc(g.Input))
			if len(g.Autocomplete) > 0 {
				b.WriteString(` list="component-names"`)
			}
			b.WriteString(`>`)
			if len(g.Autocomplete) > 0 {
				b.WriteString(`<datalist id="component-names">`)
				for _, name := range g.Autocomplete {
					fmt.Fprintf(&b, `<option value="%s"></option>`, esc(name))
				}
				b.WriteString(`</datalist>`)
			}
			b.WriteString(`</form>`)
		}
		b.WriteString(`</section>`)
		return write(w, &b)
	})
}

// Choices renders the answer buttons. Hidden slots keep their position so the
// layout does not shift between rounds.
func Choices(c viewmodel.ChoicesFragment) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div id="%s" class="choices" data-locked="%t">`, ChoicesID, c.Locked)
		for _, ch := range c.Choices {
			fmt.Fprintf(&b, `<form method="post" action="%s/session/choice/%d">`, esc(c.Prefix), ch.Index)
			fmt.Fprintf(&b, `<button type="submit" class="choice" data-slot="%d"`, ch.Index)
			if !ch.Visible {
				b.WriteString(` hidden`)
			}
			if !ch.Enabled {
				b.WriteString(` disabled`)
			}
			fmt.Fprintf(&b, `>%s</button></form>`, esc(ch.Label))
		}
		b.WriteString(`</div>`)
		return write(w, &b)
	})
}

// ResultsFragment renders the summary and the way back to the main menu.
func ResultsFragment(r viewmodel.ResultsFragment) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section id="results-menu" class="menu">`)
		b.WriteString(`<h2>Results</h2><dl>`)
		fmt.Fprintf(&b, `<dt>Rounds</dt><dd id="result-rounds">%d</dd>`, r.Rounds)
		fmt.Fprintf(&b, `<dt>Time</dt><dd id="result-time">%s</dd>`, esc(r.Time))
		fmt.Fprintf(&b, `<dt>Seconds per round</dt><dd id="result-rate">%s</dd>`, esc(r.Rate))
		b.WriteString(`</dl>`)
		fmt.Fprintf(&b, `<form method="post" action="%s/session/menu">`, esc(r.Prefix))
		b.WriteString(`<button type="submit" class="menu-return">Main menu</button></form>`)
		b.WriteString(`</section>`)
		return write(w, &b)
	})
}
