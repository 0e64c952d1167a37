package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"wfquiz/internal/catalog"
	"wfquiz/internal/game"
	"wfquiz/internal/viewmodel"
	"wfquiz/internal/views"
)

const sessionCookieName = "wfquiz_session"

// Options carries the site-wide settings the handlers render with.
type Options struct {
	Title   string
	Prefix  string
	BaseURL string
	Version string
	Secure  bool
}

// SessionHandler serves the quiz page and the session endpoints. Each browser
// owns one session, identified by cookie.
type SessionHandler struct {
	store *game.Store
	opts  Options
}

func NewSessionHandler(store *game.Store, opts Options) *SessionHandler {
	if opts.Title == "" {
		opts.Title = "wfquiz"
	}
	return &SessionHandler{store: store, opts: opts}
}

// RegisterRoutes adds the request/response routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.page)
	r.Route("/session", func(r chi.Router) {
		r.Post("/start", h.start)
		r.Post("/choice/{slot}", h.choice)
		r.Post("/answer", h.answer)
		r.Post("/menu", h.menu)
		r.Get("/state", h.state)
	})
}

// RegisterStreams adds the long-lived push routes. They must not sit behind a
// request timeout.
func (h *SessionHandler) RegisterStreams(r chi.Router) {
	r.Get("/session/stream", h.stream)
	r.Get("/session/ws", h.socket)
}

func (h *SessionHandler) page(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	snap := sess.Snapshot(h.store.Now())
	render(w, r, views.Page(h.buildPage(snap)))
}

func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if err := h.doStart(sess, r.FormValue("difficulty")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, sess, "")
}

func (h *SessionHandler) choice(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		h.fail(w, r, game.ErrNoSuchSlot)
		return
	}
	out, err := h.doChoice(sess, slot)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, sess, out.String())
}

func (h *SessionHandler) answer(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	out, err := h.doAnswer(sess, r.FormValue("answer"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, sess, out.String())
}

func (h *SessionHandler) menu(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := h.doMenu(sess); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, sess, "")
}

func (h *SessionHandler) state(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	writeJSON(w, http.StatusOK, actionResult{State: sess.Snapshot(h.store.Now())})
}

func (h *SessionHandler) stream(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	hub := h.store.Broadcaster(sess.ID)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	send := func(event string) {
		snap := sess.Snapshot(h.store.Now())
		if event == game.EventChoices && snap.View == game.ViewGameMenu && snap.Mode == game.ModeChoices {
			writeSSE(w, game.EventChoices, renderToString(r, views.Choices(h.buildChoices(snap))))
		} else {
			writeSSE(w, game.EventView, renderToString(r, views.View(h.buildPage(snap))))
		}
		flusher.Flush()
	}

	send(game.EventView)

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				return
			}
			send(event)
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func (h *SessionHandler) doStart(sess *game.Session, raw string) error {
	d, err := game.ParseDifficulty(raw)
	if err != nil {
		return err
	}
	if err := sess.Start(d, h.store.Now()); err != nil {
		return err
	}
	h.store.Publish(sess.ID, game.EventView)
	return nil
}

func (h *SessionHandler) doChoice(sess *game.Session, slot int) (game.Outcome, error) {
	out, err := sess.SelectChoice(slot, h.store.Now())
	if err != nil {
		return out, err
	}
	switch out {
	case game.OutcomeCorrect:
		h.store.Publish(sess.ID, game.EventView)
	case game.OutcomeIncorrect:
		h.store.EnsureCooldownLoop(sess.ID)
		h.store.Publish(sess.ID, game.EventChoices)
	}
	return out, nil
}

func (h *SessionHandler) doAnswer(sess *game.Session, value string) (game.Outcome, error) {
	out, err := sess.SubmitText(value, h.store.Now())
	if err != nil {
		return out, err
	}
	if out == game.OutcomeCorrect {
		h.store.Publish(sess.ID, game.EventView)
	}
	return out, nil
}

func (h *SessionHandler) doMenu(sess *game.Session) error {
	if err := sess.ReturnToMenu(); err != nil {
		return err
	}
	h.store.Publish(sess.ID, game.EventView)
	return nil
}

type actionResult struct {
	Outcome string        `json:"outcome,omitempty"`
	State   game.Snapshot `json:"state"`
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, sess *game.Session, outcome string) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, actionResult{Outcome: outcome, State: sess.Snapshot(h.store.Now())})
		return
	}
	http.Redirect(w, r, h.opts.Prefix+"/", http.StatusSeeOther)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownDifficulty), errors.Is(err, game.ErrNoSuchSlot):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInProgress), errors.Is(err, game.ErrNotPlaying), errors.Is(err, game.ErrWrongInput):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail reports a rejected action. Form posts that were merely out of turn go back
// to the page, which shows the session as it really is.
func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("session action failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("session action rejected")
	}
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	if status < http.StatusInternalServerError {
		http.Redirect(w, r, h.opts.Prefix+"/", http.StatusSeeOther)
		return
	}
	http.Error(w, err.Error(), status)
}

// resolve finds the caller's session or creates one. The returned cookie is
// non-nil when a new session was made and must be sent back.
func (h *SessionHandler) resolve(r *http.Request) (*game.Session, *http.Cookie) {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		if sess, ok := h.store.GetSession(c.Value); ok {
			return sess, nil
		}
	}
	sess := h.store.CreateSession()
	hlog.FromRequest(r).Debug().Str("session", sess.ID).Msg("session created")
	return sess, h.cookie(sess.ID)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) *game.Session {
	sess, c := h.resolve(r)
	if c != nil {
		http.SetCookie(w, c)
	}
	return sess
}

func (h *SessionHandler) cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     h.opts.Prefix + "/",
		HttpOnly: true,
		Secure:   h.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *SessionHandler) buildPage(snap game.Snapshot) viewmodel.Page {
	page := viewmodel.Page{
		Title:    h.opts.Title,
		Prefix:   h.opts.Prefix,
		ShareURL: h.opts.Prefix + "/share/qr",
		View:     snap.View,
		MainMenu: h.buildMainMenu(),
		Game:     h.buildGame(snap),
	}
	if snap.Results != nil {
		page.Results = viewmodel.ResultsFragment{
			Prefix: h.opts.Prefix,
			Rounds: snap.Results.Rounds,
			Time:   snap.Results.Time,
			Rate:   snap.Results.Rate,
		}
	}
	if len(h.store.Catalog().Valid()) == 0 {
		page.ErrorText = catalog.ErrNoValidItems.Error() + ": no component image could be loaded."
	}
	return page
}

func (h *SessionHandler) buildMainMenu() viewmodel.MainMenu {
	menu := viewmodel.MainMenu{Prefix: h.opts.Prefix}
	for _, d := range h.store.Rules().Available() {
		name := string(d)
		menu.Difficulties = append(menu.Difficulties, viewmodel.DifficultyOption{
			Value: name,
			Label: strings.ToUpper(name[:1]) + name[1:],
		})
	}
	return menu
}

func (h *SessionHandler) buildGame(snap game.Snapshot) viewmodel.GameFragment {
	return viewmodel.GameFragment{
		Prefix:       h.opts.Prefix,
		Difficulty:   string(snap.Difficulty),
		Mode:         string(snap.Mode),
		Round:        snap.Round,
		Rounds:       snap.Rounds,
		Running:      snap.Running,
		StartedMs:    snap.StartedMs,
		ElapsedMs:    snap.ElapsedMs,
		Time:         snap.Time,
		ImageRef:     snap.ImageRef,
		Choices:      h.buildChoices(snap),
		Autocomplete: snap.Autocomplete,
		Input:        snap.Input,
		RoundKey:     buildRoundKey(snap),
	}
}

func (h *SessionHandler) buildChoices(snap game.Snapshot) viewmodel.ChoicesFragment {
	out := viewmodel.ChoicesFragment{
		Prefix:  h.opts.Prefix,
		Choices: make([]viewmodel.Choice, 0, len(snap.Slots)),
		Locked:  snap.Locked,
	}
	for _, sl := range snap.Slots {
		out.Choices = append(out.Choices, viewmodel.Choice{
			Index:   sl.Index,
			Label:   sl.Label,
			Visible: sl.Visible,
			Enabled: sl.Enabled,
		})
	}
	return out
}

func buildRoundKey(snap game.Snapshot) string {
	return strings.Join([]string{
		snap.State,
		strconv.Itoa(snap.Round),
		strconv.FormatInt(snap.StartedMs, 10),
	}, "|")
}
