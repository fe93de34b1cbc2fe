package app

import (
	"os"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment
// variables. Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Addr == "" {
		cfg.Addr = os.Getenv("LISTEN_ADDR")
	}
	if cfg.Renderer == "" {
		cfg.Renderer = os.Getenv("RENDERER")
	}
	if cfg.RemoteURL == "" {
		cfg.RemoteURL = os.Getenv("RENDERER_REMOTE_URL")
	}
	if cfg.ChromePath == "" {
		cfg.ChromePath = os.Getenv("CHROME_PATH")
	}
	if cfg.RenderTimeout == 0 {
		if s := os.Getenv("RENDER_TIMEOUT"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.RenderTimeout = d
			}
		}
	}
}
