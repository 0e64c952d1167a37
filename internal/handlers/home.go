package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// HomeHandler serves the site-level routes around the quiz.
type HomeHandler struct {
	opts Options
}

func NewHomeHandler(opts Options) *HomeHandler {
	return &HomeHandler{opts: opts}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.health)
	r.Get("/version", h.version)
	r.Get("/share/qr", h.shareQR)
}

func (h *HomeHandler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Ok\n"))
}

func (h *HomeHandler) version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("wfquiz v" + h.opts.Version + "\n"))
}

// shareQR encodes the quiz's public URL so another player can open it.
func (h *HomeHandler) shareQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(h.siteURL(r), qrcode.Medium, qrSize)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("qr generation failed")
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(png)
}

func (h *HomeHandler) siteURL(r *http.Request) string {
	if base := strings.TrimSpace(h.opts.BaseURL); base != "" {
		return strings.TrimRight(base, "/") + "/"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + h.opts.Prefix + "/"
}
