package app

import (
	"errors"
	"fmt"
	"time"
)

// Renderer backend names accepted by Config.Renderer.
const (
	RendererChrome = "chrome"
	RendererRemote = "remote"
)

// Config is the resolved service configuration after flags, environment,
// and an optional config file have been merged.
type Config struct {
	// Addr is the listen address for the HTTP API.
	Addr string

	// Renderer selects the page-rendering backend.
	Renderer string

	// RemoteURL is the base URL of the remote rendering service; required
	// when Renderer is "remote".
	RemoteURL string

	// ChromePath optionally pins the Chrome/Chromium binary; empty lets the
	// backend discover one.
	ChromePath string

	// RenderTimeout is the default bound for a single page render, used
	// when a request does not carry its own timeout.
	RenderTimeout time.Duration

	Verbose bool
}

// ValidateConfig rejects configurations the app cannot start with.
func ValidateConfig(cfg Config) error {
	if cfg.Addr == "" {
		return errors.New("listen address is required")
	}
	switch cfg.Renderer {
	case RendererChrome:
	case RendererRemote:
		if cfg.RemoteURL == "" {
			return errors.New("remote renderer requires a remote URL")
		}
	default:
		return fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}
	if cfg.RenderTimeout < 0 {
		return errors.New("render timeout must not be negative")
	}
	return nil
}
