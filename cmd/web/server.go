package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"wfquiz/internal/catalog"
	"wfquiz/internal/config"
	"wfquiz/internal/game"
	"wfquiz/internal/handlers"
)

//go:embed static/*
var embeddedStatic embed.FS

// loadCatalog builds the roster and checks every image, returning the names
// that failed to load.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, *config.File, []string, error) {
	file, err := config.LoadFile(cfg.CatalogFile)
	if err != nil {
		return nil, nil, nil, err
	}
	cat, err := catalog.New(file.Components, catalog.WithImagePrefix(cfg.Prefix+catalog.DefaultImagePrefix))
	if err != nil {
		return nil, nil, nil, err
	}
	failed := cat.LoadAll(ctx, catalog.FSLoader{FS: os.DirFS(cfg.ImageDir)})
	log.Info().
		Int("components", cat.Len()).
		Int("invalid", len(failed)).
		Str("image_dir", cfg.ImageDir).
		Msg("catalog loaded")
	return cat, file, failed, nil
}

func newRouter(cfg *config.Config, store *game.Store, images fs.FS) (http.Handler, error) {
	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return nil, err
	}

	opts := handlers.Options{
		Title:   "wfquiz",
		Prefix:  cfg.Prefix,
		BaseURL: cfg.BaseURL,
		Version: releaseVersion,
		Secure:  strings.HasPrefix(cfg.BaseURL, "https://"),
	}
	sessionHandler := handlers.NewSessionHandler(store, opts)
	homeHandler := handlers.NewHomeHandler(opts)
	assetHandler := handlers.NewAssetHandler(store.Catalog(), images)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(handlers.SecurityHeaders(opts.Secure))

	routes := func(r chi.Router) {
		r.Mount("/static", http.StripPrefix(cfg.Prefix+"/static", http.FileServer(http.FS(staticFS))))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))
			sessionHandler.RegisterRoutes(r)
			homeHandler.RegisterRoutes(r)
			assetHandler.RegisterRoutes(r)
		})
		sessionHandler.RegisterStreams(r)
	}
	if cfg.Prefix == "" {
		routes(r)
	} else {
		r.Route(cfg.Prefix, routes)
	}

	if len(cfg.CORSOrigins) == 0 {
		return r, nil
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	log.Info().Str("version", releaseVersion).Msg("starting wfquiz")

	cat, file, _, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	if len(cat.Valid()) == 0 {
		return fmt.Errorf("%s: %w", cfg.ImageDir, catalog.ErrNoValidItems)
	}
	rules, err := cfg.Rules(file)
	if err != nil {
		return err
	}

	store := game.NewStore(cat, rules, nil)
	go store.ReapLoop(ctx, cfg.SessionTimeout)

	handler, err := newRouter(cfg, store, os.DirFS(cfg.ImageDir))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("prefix", cfg.Prefix).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
