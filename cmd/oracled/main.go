package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Meta-Virgo/Tarot/internal/adapters/ai/gemini"
	"github.com/Meta-Virgo/Tarot/internal/adapters/decks"
	httpadapter "github.com/Meta-Virgo/Tarot/internal/adapters/http"
	"github.com/Meta-Virgo/Tarot/internal/adapters/speech"
	"github.com/Meta-Virgo/Tarot/internal/app"
	"github.com/Meta-Virgo/Tarot/internal/config"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

// wallScheduler runs phase-transition timers on real wall-clock timers.
type wallScheduler struct{}

func (wallScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	catalog := decks.NewEmbeddedCatalog()

	aiClient := gemini.NewClient(
		&http.Client{Timeout: cfg.LLMTimeout},
		cfg.GeminiAPIKey,
		cfg.GeminiBaseURL,
		cfg.GeminiModel,
		cfg.GeminiTTSModel,
		cfg.GeminiTTSVoice,
		logger,
	)

	registry := app.NewRegistry(func() *app.Session {
		return app.NewSession(catalog, aiClient, aiClient, speech.Disabled{}, wallScheduler{}, stdRNG{}, logger)
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(httpadapter.LoggingMiddleware(logger))

	handler := httpadapter.NewHandler(registry, catalog)
	handler.Register(e)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
