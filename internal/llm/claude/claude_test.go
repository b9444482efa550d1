package claude

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crypto-narrator/internal/types"
)

func TestGenerateReturnsFirstTextBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "ak-test" || r.Header.Get("anthropic-version") != apiVersion {
			t.Errorf("Missing auth headers: %v", r.Header)
		}
		var body messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.MaxTokens != 350 || len(body.Messages) != 1 || body.Messages[0]["role"] != "user" {
			t.Errorf("Unexpected request body: %+v", body)
		}
		w.Write([]byte(`{"content":[{"type":"thinking","text":"hmm"},{"type":"text","text":"ADA grinds higher."}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	out, err := New("ak-test", srv.URL).Generate(context.Background(), types.GenerationRequest{
		Prompt: "p", Model: "claude-3-5-haiku-latest", MaxTokens: 350, Temperature: 0.9,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != "ADA grinds higher." {
		t.Errorf("Unexpected completion %q", out)
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	_, err := New("ak-test", srv.URL).Generate(context.Background(), types.GenerationRequest{Prompt: "p"})
	if !errors.Is(err, types.ErrGeneration) {
		t.Errorf("Expected ErrGeneration, got %v", err)
	}
}

func TestGenerateMissingKey(t *testing.T) {
	_, err := New("", "").Generate(context.Background(), types.GenerationRequest{Prompt: "p"})
	if !errors.Is(err, types.ErrGeneration) {
		t.Errorf("Expected ErrGeneration, got %v", err)
	}
}
