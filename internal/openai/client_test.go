package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_Success(t *testing.T) {
	var req map[string]any
	srv := completionServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "rewritten notes"}}]
	}`, &req)

	c, err := NewClient("test-key", "gpt-4o-mini", srv.URL+"/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	out, err := c.Generate(context.Background(), "improve these notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "rewritten notes" {
		t.Errorf("expected 'rewritten notes', got %q", out)
	}
	if req["model"] != "gpt-4o-mini" {
		t.Errorf("expected model in request, got %v", req["model"])
	}
	msgs, ok := req["messages"].([]any)
	if !ok || len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", req["messages"])
	}
}

func TestGenerate_APIError(t *testing.T) {
	srv := completionServer(t, http.StatusUnauthorized,
		`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`, nil)

	c, err := NewClient("test-key", "gpt-4o-mini", srv.URL+"/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Generate(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error for 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := completionServer(t, http.StatusOK,
		`{"id": "chatcmpl-2", "object": "chat.completion", "created": 1700000000, "model": "gpt-4o-mini", "choices": []}`, nil)

	c, _ := NewClient("test-key", "gpt-4o-mini", srv.URL+"/")
	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini", ""); err == nil {
		t.Error("expected error without key")
	}
	if _, err := NewClient("key", "", ""); err == nil {
		t.Error("expected error without model")
	}
}
