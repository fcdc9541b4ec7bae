package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booksum/internal/config"
	"booksum/internal/infra/llm"
)

func testGenerationConfig(host string) *config.GenerationConfig {
	return &config.GenerationConfig{
		Host:        host,
		NumPredict:  64,
		Temperature: 0.2,
		TopP:        0.9,
		Timeout:     5 * time.Second,
	}
}

func TestOllama_Generate(t *testing.T) {
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":    "qwen2.5:3b",
			"response": "  Alice falls down a rabbit hole.  ",
			"done":     true,
		})
	}))
	defer ts.Close()

	client, err := llm.NewOllama("qwen2.5:3b", testGenerationConfig(ts.URL))
	if err != nil {
		t.Fatalf("NewOllama returned error: %v", err)
	}

	got, err := client.Generate(context.Background(), "Summarize: Alice fell...")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "Alice falls down a rabbit hole." {
		t.Errorf("Generate = %q, want trimmed summary", got)
	}

	// Generation options from config must reach the server.
	if gotBody["model"] != "qwen2.5:3b" {
		t.Errorf("request model = %v", gotBody["model"])
	}
	opts, ok := gotBody["options"].(map[string]interface{})
	if !ok {
		t.Fatalf("request carried no options: %v", gotBody)
	}
	if opts["num_predict"] != float64(64) {
		t.Errorf("num_predict = %v, want 64", opts["num_predict"])
	}
}

func TestOllama_GenerateServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "model runner crashed"})
	}))
	defer ts.Close()

	client, err := llm.NewOllama("qwen2.5:3b", testGenerationConfig(ts.URL))
	if err != nil {
		t.Fatalf("NewOllama returned error: %v", err)
	}

	_, err = client.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, llm.ErrInvocation) {
		t.Errorf("expected ErrInvocation, got %v", err)
	}
}

func TestOllama_GenerateHostUnreachable(t *testing.T) {
	// Reserved but closed: nothing listens here.
	client, err := llm.NewOllama("qwen2.5:3b", testGenerationConfig("http://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("NewOllama returned error: %v", err)
	}

	_, err = client.Generate(context.Background(), "prompt")
	if !errors.Is(err, llm.ErrInvocation) {
		t.Errorf("expected ErrInvocation for unreachable host, got %v", err)
	}
}

func TestOllama_Model(t *testing.T) {
	client, err := llm.NewOllama("llama3.2:1b", testGenerationConfig("http://127.0.0.1:11434"))
	if err != nil {
		t.Fatalf("NewOllama returned error: %v", err)
	}
	if client.Model() != "llama3.2:1b" {
		t.Errorf("Model() = %q", client.Model())
	}
}
