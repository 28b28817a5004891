package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func anthropicServer(t *testing.T, handler http.HandlerFunc) *Anthropic {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewAnthropic(Endpoint{APIKey: "test-key", Model: "claude-haiku", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropic_Generate(t *testing.T) {
	var body map[string]any
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicMessage(`{"prompt":"What does TLS stand for?","options":["a","b"]}`, "end_turn"))
	})

	req := Prompt("You write exam questions.", "One question please.")
	req.Schema = quizSchema()
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.OutputTokens != 30 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.Stop != StopEnd {
		t.Fatalf("expected stop end, got %q", resp.Stop)
	}
	if body["model"] != "claude-haiku-4-5-20251001" {
		t.Fatalf("alias not resolved, sent model %v", body["model"])
	}
	if _, ok := body["output_config"]; !ok {
		t.Fatal("schema not sent as output_config")
	}
}

func TestAnthropic_TruncatedOutput(t *testing.T) {
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicMessage(`{"prompt":"cut`, "max_tokens"))
	})

	req := Prompt("", "x")
	req.Schema = quizSchema()
	_, err := p.Generate(context.Background(), req)
	var tr *TruncatedError
	if !errors.As(err, &tr) {
		t.Fatalf("expected TruncatedError, got %v", err)
	}
}

func TestAnthropic_RateLimit(t *testing.T) {
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "slow down"},
		})
	})

	_, err := p.Generate(context.Background(), Prompt("", "x"))
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitError, got %T (%v)", err, err)
	}
	if rl.RetryAfter != 3*time.Second {
		t.Fatalf("expected 3s retry-after, got %s", rl.RetryAfter)
	}
}

func TestAnthropic_ServerError(t *testing.T) {
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "api_error", "message": "oops"},
		})
	})

	_, err := p.Generate(context.Background(), Prompt("", "x"))
	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("expected UnavailableError, got %T (%v)", err, err)
	}
}

func TestAnthropic_RequiresKey(t *testing.T) {
	if _, err := NewAnthropic(Endpoint{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestAlias(t *testing.T) {
	if got := alias("claude-sonnet", anthropicAliases); got != "claude-sonnet-4-20250514" {
		t.Fatalf("unexpected alias %q", got)
	}
	if got := alias("claude-opus-4-1", anthropicAliases); got != "claude-opus-4-1" {
		t.Fatalf("full IDs should pass through, got %q", got)
	}
}
