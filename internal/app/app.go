// Package app wires configuration, the renderer backend, the crawler, and
// the HTTP server into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mirrorops/contentmirror/internal/browser"
	"github.com/mirrorops/contentmirror/internal/crawler"
	"github.com/mirrorops/contentmirror/internal/server"
)

// shutdownGrace is how long in-flight requests get to finish after the
// context is cancelled.
const shutdownGrace = 10 * time.Second

type App struct {
	cfg  Config
	http *http.Server
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}

	handler := server.New(crawler.New(renderer), cfg.RenderTimeout).Handler()
	return &App{
		cfg: cfg,
		http: &http.Server{
			Addr:        cfg.Addr,
			Handler:     handler,
			BaseContext: func(net.Listener) context.Context { return ctx },
		},
	}, nil
}

func newRenderer(cfg Config) (browser.Renderer, error) {
	switch cfg.Renderer {
	case RendererChrome:
		return &browser.Chrome{ExecPath: cfg.ChromePath}, nil
	case RendererRemote:
		return &browser.Remote{BaseURL: cfg.RemoteURL}, nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", a.cfg.Addr).
			Str("renderer", a.cfg.Renderer).
			Msg("listening")
		errCh <- a.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("stopped")
	return nil
}

func (a *App) Close() {
	_ = a.http.Close()
}
