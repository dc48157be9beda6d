package nlsql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewAnthropicClientRequiresAPIKey(t *testing.T) {
	if _, err := NewAnthropicClient(AnthropicConfig{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNewAnthropicClientDefaults(t *testing.T) {
	client, err := NewAnthropicClient(AnthropicConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewAnthropicClient() error = %v", err)
	}
	if client.baseURL != "https://api.anthropic.com" {
		t.Fatalf("baseURL = %q", client.baseURL)
	}
	if client.model != "claude-opus-4-6" {
		t.Fatalf("model = %q", client.model)
	}
}

func TestCompleteSendsMessagesRequest(t *testing.T) {
	var captured struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-test" {
			t.Fatalf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != anthropicVersion {
			t.Fatalf("anthropic-version = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"SELECT 1"}]}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(AnthropicConfig{BaseURL: server.URL, APIKey: "sk-test", Model: "claude-opus-4-6"})
	if err != nil {
		t.Fatalf("NewAnthropicClient() error = %v", err)
	}

	text, err := client.Complete(context.Background(), "genera sql", 500)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "SELECT 1" {
		t.Fatalf("Complete() = %q", text)
	}
	if captured.Model != "claude-opus-4-6" {
		t.Fatalf("model = %q", captured.Model)
	}
	if captured.MaxTokens != 500 {
		t.Fatalf("max_tokens = %d", captured.MaxTokens)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" || captured.Messages[0].Content != "genera sql" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
}

func TestCompleteReportsAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(AnthropicConfig{BaseURL: server.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewAnthropicClient() error = %v", err)
	}

	_, err = client.Complete(context.Background(), "prompt", 100)
	if err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Fatalf("Complete() error = %v, want status in message", err)
	}
}

func TestCompleteRejectsEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(AnthropicConfig{BaseURL: server.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewAnthropicClient() error = %v", err)
	}

	if _, err := client.Complete(context.Background(), "prompt", 100); err == nil {
		t.Fatal("Complete() should reject empty content")
	}
}
