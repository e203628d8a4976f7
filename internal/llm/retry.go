package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

const (
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Retrying wraps a Generator, retrying transient failures with exponential
// backoff and classifying the final error.
type Retrying struct {
	next   Generator
	cfg    RetryConfig
	logger *slog.Logger
}

func NewRetrying(next Generator, cfg RetryConfig, logger *slog.Logger) *Retrying {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Retrying{next: next, cfg: cfg, logger: logger}
}

func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		out, err := r.next.Generate(ctx, prompt)
		if err == nil {
			if strings.TrimSpace(out) == "" {
				return "", ErrEmptyResponse
			}
			return out, nil
		}
		lastErr = Classify(err)

		if !Retryable(lastErr) || attempt == r.cfg.MaxRetries {
			break
		}

		backoff := calculateBackoff(attempt, r.cfg)
		r.logger.Warn("generation failed, retrying",
			"attempt", attempt+1,
			"max_retries", r.cfg.MaxRetries,
			"backoff", backoff,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	return "", fmt.Errorf("generate: %w", lastErr)
}

// calculateBackoff returns InitialBackoff * 2^attempt, capped at MaxBackoff.
func calculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}
