// Command advokitd serves the campaign intake dialogue and the content
// generation pipeline over HTTP.
//
// Configuration is via environment variables:
//
//	ADVOKIT_PORT            - Server port (default: 8080)
//	ADVOKIT_PROVIDER        - Provider: anthropic, openai, or mock (required)
//	ADVOKIT_MODEL           - Model override (optional, uses provider default)
//	ADVOKIT_LOG_LEVEL       - Log level (default: info)
//	ADVOKIT_LOG_FORMAT      - Log format: text or json (default: text)
//	ADVOKIT_JOB_TTL         - Idle job eviction window (default: 10m)
//	ADVOKIT_SWEEP_INTERVAL  - Eviction sweep cadence (default: 5m)
//	ADVOKIT_STREAM_INTERVAL - SSE push cadence (default: 500ms)
//	ADVOKIT_SEARCH_RESULTS  - Web results per research query (default: 5)
//	ANTHROPIC_API_KEY       - Anthropic API key
//	OPENAI_API_KEY          - OpenAI API key
//
// Usage:
//
//	ADVOKIT_PROVIDER=anthropic go run ./cmd/advokitd
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/advokit/advokit"
	"github.com/advokit/advokit/logging"
	"github.com/advokit/advokit/model"
	"github.com/advokit/advokit/model/anthropic"
	"github.com/advokit/advokit/model/openai"
	"github.com/advokit/advokit/progress"
	"github.com/advokit/advokit/search"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, os.Stderr)

	gen, err := createGenerator(cfg)
	if err != nil {
		logger.Error("creating generator failed", "error", err)
		os.Exit(1)
	}

	searcher, err := search.NewDuckDuckGo(cfg.SearchResults)
	if err != nil {
		logger.Error("creating searcher failed", "error", err)
		os.Exit(1)
	}

	store := progress.NewStore(
		progress.WithTTL(cfg.TTL),
		progress.WithSweepInterval(cfg.SweepInterval),
		progress.WithLogger(logger),
	)

	app := advokit.New(gen, func(o *advokit.Options) {
		o.Searcher = searcher
		o.Store = store
		o.StreamInterval = cfg.StreamInterval
		o.Logger = logger
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go store.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // SSE needs no write timeout
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "provider", cfg.Provider)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}
}

// createGenerator picks the content generator for the configured provider.
func createGenerator(cfg *Config) (model.Generator, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicKey
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	case "openai":
		return openai.New(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case "mock":
		return &model.MockGenerator{Default: "mock campaign content"}, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
