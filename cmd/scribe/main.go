package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/scribe/internal/anthropic"
	"github.com/MikeSquared-Agency/scribe/internal/api"
	"github.com/MikeSquared-Agency/scribe/internal/config"
	"github.com/MikeSquared-Agency/scribe/internal/dedup"
	"github.com/MikeSquared-Agency/scribe/internal/extractor"
	"github.com/MikeSquared-Agency/scribe/internal/gemini"
	"github.com/MikeSquared-Agency/scribe/internal/hermes"
	"github.com/MikeSquared-Agency/scribe/internal/llm"
	"github.com/MikeSquared-Agency/scribe/internal/openai"
	"github.com/MikeSquared-Agency/scribe/internal/processor"
	"github.com/MikeSquared-Agency/scribe/internal/questionnaire"
	"github.com/MikeSquared-Agency/scribe/internal/session"
	"github.com/MikeSquared-Agency/scribe/internal/store"
	"github.com/MikeSquared-Agency/scribe/internal/synth"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("scribe starting", "port", cfg.Port, "provider", cfg.LLMProvider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Text generation
	base, provider, err := newGenerator(ctx, cfg)
	if err != nil {
		slog.Error("failed to create text generator", "error", err)
		os.Exit(1)
	}
	gen := llm.NewRetrying(
		llm.WithTimeout(base, cfg.LLMTimeout),
		llm.RetryConfig{MaxRetries: cfg.LLMMaxRetries},
		slog.Default(),
	)
	slog.Info("text generator ready", "provider", provider)

	sessions := session.NewManager(
		extractor.New(gen, slog.Default()),
		dedup.New(gen, slog.Default()),
		synth.New(gen, slog.Default()),
		cfg.DefaultLanguage,
		slog.Default(),
	)

	// Database (optional, keeps the review audit trail)
	var rec processor.Recorder
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		rec = db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, reviews will not be persisted")
	}

	// NATS/Hermes (optional, documents can also arrive over HTTP)
	var hermesClient *hermes.Client
	var pub processor.Publisher
	var bus api.Bus
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		pub = hermesClient
		bus = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	proc := processor.New(sessions, pub, rec, slog.Default())

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectDocumentImproved, proc.HandleDocumentImproved); err != nil {
			slog.Error("failed to subscribe to document events", "error", err)
			os.Exit(1)
		}
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, api.Deps{
		Sessions:  sessions,
		Catalog:   questionnaire.Default(),
		Suggester: questionnaire.NewSuggester(gen, slog.Default()),
		Events:    proc,
		Bus:       bus,
		Provider:  provider,
	}, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if hermesClient != nil {
		if err := hermesClient.Publish(hermes.SubjectAgentRegistered, hermes.AgentRegistered{
			AgentID:      "scribe",
			Name:         "Scribe",
			Provider:     provider,
			Capabilities: []string{"preference-extraction", "note-rewrite"},
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("scribe ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	cancel()
	slog.Info("scribe stopped")
}

// newGenerator builds the configured provider client and returns its name.
func newGenerator(ctx context.Context, cfg config.Config) (llm.Generator, string, error) {
	switch cfg.LLMProvider {
	case "gemini":
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, "")
		if err != nil {
			return nil, "", err
		}
		return c, c.Name(), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), "anthropic:" + cfg.AnthropicModel, nil
	case "openai":
		c, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, "", err
		}
		return c, c.Name(), nil
	default:
		return nil, "", fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
