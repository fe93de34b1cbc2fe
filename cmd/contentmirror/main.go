package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mirrorops/contentmirror/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath    string
		addr          string
		renderer      string
		remoteURL     string
		chromePath    string
		renderTimeout time.Duration
		verbose       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to YAML or JSON config file (flags and env take precedence)")
	flag.StringVar(&addr, "addr", "", "HTTP listen address (default :8080)")
	flag.StringVar(&renderer, "renderer", "", "Rendering backend: chrome or remote (default chrome)")
	flag.StringVar(&remoteURL, "renderer.remoteURL", "", "Base URL of the remote rendering service")
	flag.StringVar(&chromePath, "renderer.chromePath", "", "Path to the Chrome/Chromium binary (default autodiscover)")
	flag.DurationVar(&renderTimeout, "renderer.timeout", 0, "Per-page render timeout (e.g. 30s); 0 uses the backend default")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		Addr:          addr,
		Renderer:      renderer,
		RemoteURL:     remoteURL,
		ChromePath:    chromePath,
		RenderTimeout: renderTimeout,
		Verbose:       verbose,
	}

	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Renderer == "" {
		cfg.Renderer = app.RendererChrome
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
