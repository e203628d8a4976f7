package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"invalid key", errors.New("googleapi: Error 400: API_KEY_INVALID"), ErrInvalidCredential},
		{"quota", errors.New("QUOTA_EXCEEDED for project"), ErrQuotaExceeded},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), ErrQuotaExceeded},
		{"safety", errors.New("candidate blocked: SAFETY"), ErrSafetyBlocked},
		{"permission", errors.New("PERMISSION_DENIED on model"), ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want wrapping %v", tt.err, got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("Classify should keep the original error in the chain")
			}
		})
	}

	for _, msg := range []string{
		"api error 503: overloaded_error: retry after 4013ms",
		"api error 500: request 1403 failed",
		"connection reset after 401 bytes",
	} {
		got := Classify(errors.New(msg))
		if errors.Is(got, ErrInvalidCredential) || errors.Is(got, ErrPermissionDenied) {
			t.Errorf("Classify(%q) = %v, look-alike numbers must not classify", msg, got)
		}
	}

	if got := Classify(errors.New("api error 401: unauthorized")); !errors.Is(got, ErrInvalidCredential) {
		t.Errorf("401 status should be an invalid credential, got %v", got)
	}
	if got := Classify(errors.New(`POST "https://api.openai.com/v1/chat/completions": 403 Forbidden`)); !errors.Is(got, ErrPermissionDenied) {
		t.Errorf("403 status should be permission denied, got %v", got)
	}

	plain := errors.New("connection reset")
	if got := Classify(plain); got != plain {
		t.Errorf("unknown errors should pass through, got %v", got)
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("api error 429: rate_limit_error"), true},
		{errors.New("api error 503: overloaded"), true},
		{errors.New("Internal Server Error"), true},
		{errors.New("api error 400: invalid_request_error"), false},
		{errors.New("api error 503: overloaded_error: retry after 4013ms"), true},
		{Classify(errors.New("api error 503: overloaded_error: retry after 4013ms")), true},
		{errors.New("Error 429, Message: slow down"), true},
		{errors.New("api error 400: prompt has 5030 tokens"), false},
		{errors.New("api error 404: model gpt-500 not found"), false},
		{context.DeadlineExceeded, false},
		{Classify(errors.New("API_KEY_INVALID")), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New("api error 503: overloaded_error: retry after 4013ms"), 503},
		{errors.New("gemini generate: Error 429, Message: quota, Status: RESOURCE_EXHAUSTED"), 429},
		{errors.New(`openai chat completion: POST "http://localhost/chat/completions": 401 Unauthorized`), 401},
		{errors.New("status code: 502"), 502},
		{errors.New("took 4013ms"), 0},
		{errors.New("api error 4013"), 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRetrying_RetriesTransientFailures(t *testing.T) {
	calls := 0
	next := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("api error 503: overloaded")
		}
		return "ok", nil
	})

	r := NewRetrying(next, RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}, discardLogger())
	out, err := r.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Errorf("expected ok, got %q", out)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetrying_DoesNotRetryPermanentFailures(t *testing.T) {
	calls := 0
	next := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", errors.New("API_KEY_INVALID")
	})

	r := NewRetrying(next, RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond}, discardLogger())
	_, err := r.Generate(context.Background(), "hi")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetrying_EmptyOutput(t *testing.T) {
	next := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "   \n", nil
	})

	r := NewRetrying(next, RetryConfig{}, discardLogger())
	_, err := r.Generate(context.Background(), "hi")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestWithTimeout(t *testing.T) {
	slow := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := WithTimeout(slow, 10*time.Millisecond).Generate(context.Background(), "hi")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for attempt, w := range want {
		if got := calculateBackoff(attempt, cfg); got != w {
			t.Errorf("attempt %d: got %s, want %s", attempt, got, w)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"  [1]  ", "[1]"},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
