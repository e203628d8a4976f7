// Package llm defines the text-generation boundary used by the review engine
// and the cross-provider behaviour layered on top of it: error
// classification, retries on transient failures and a per-call time limit.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var (
	ErrInvalidCredential = errors.New("invalid API key")
	ErrQuotaExceeded     = errors.New("API quota exceeded")
	ErrSafetyBlocked     = errors.New("content was blocked for safety reasons")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrEmptyResponse     = errors.New("no text was generated")
)

// Classify maps provider error text onto the sentinel errors above. Errors
// that match no known class are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrInvalidCredential, ErrQuotaExceeded, ErrSafetyBlocked, ErrPermissionDenied, ErrEmptyResponse} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	msg := strings.ToUpper(err.Error())
	code := StatusCode(err)
	switch {
	case strings.Contains(msg, "API_KEY_INVALID"), strings.Contains(msg, "INVALID_API_KEY"),
		strings.Contains(msg, "AUTHENTICATION_ERROR"), code == 401:
		return fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	case strings.Contains(msg, "QUOTA_EXCEEDED"), strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(msg, "INSUFFICIENT_QUOTA"):
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	case strings.Contains(msg, "SAFETY"):
		return fmt.Errorf("%w: %w", ErrSafetyBlocked, err)
	case strings.Contains(msg, "PERMISSION_DENIED"), code == 403:
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// Retryable reports whether err looks like a rate limit or a server-side
// failure worth another attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrSafetyBlocked) || errors.Is(err, ErrPermissionDenied) {
		return false
	}
	if code := StatusCode(err); code == 429 || code >= 500 {
		return true
	}
	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit", "rate_limit", "too many requests",
		"internal server error", "server_error", "service unavailable",
		"bad gateway", "gateway timeout", "overloaded",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// statusPattern finds the HTTP status in provider errors: "api error 503: ..."
// (anthropic), "Error 429, Message: ..." (genai) and `POST "url": 401 Unauthorized`
// (openai-go).
var statusPattern = regexp.MustCompile(`(?i)(?:\berror|\bstatus(?: code)?|":)\s*:?\s*([1-5][0-9]{2})\b`)

// StatusCode returns the HTTP status named in err, or 0 when there is none.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	code, _ := strconv.Atoi(m[1])
	return code
}

// WithTimeout bounds every call to next by d. A call that runs past the
// bound fails with context.DeadlineExceeded.
func WithTimeout(next Generator, d time.Duration) Generator {
	if d <= 0 {
		return next
	}
	return GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next.Generate(ctx, prompt)
	})
}
