package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdfchat/internal/config"
)

type stubEmbedder struct {
	vectors [][]float32
	err     error
}

func (s stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return s.vectors, s.err
}

func (s stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if len(s.vectors) == 0 {
		return nil, s.err
	}
	return s.vectors[0], s.err
}

func TestEmbedChunksValidatesProviderOutput(t *testing.T) {
	chunks := []string{"a", "b"}
	tests := []struct {
		name    string
		stub    stubEmbedder
		wantErr string
	}{
		{"provider error", stubEmbedder{err: errors.New("boom")}, "boom"},
		{"count mismatch", stubEmbedder{vectors: [][]float32{{1, 2}}}, "1 vectors for 2 chunks"},
		{"empty vector", stubEmbedder{vectors: [][]float32{{1, 2}, {}}}, "empty vector"},
		{"dimension mismatch", stubEmbedder{vectors: [][]float32{{1, 2}, {1, 2, 3}}}, "dimension mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EmbedChunks(context.Background(), tt.stub, chunks)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEmbedChunksEmpty(t *testing.T) {
	vectors, err := EmbedChunks(context.Background(), stubEmbedder{err: errors.New("must not be called")}, nil)
	if err != nil || vectors != nil {
		t.Fatalf("got %v, %v", vectors, err)
	}
}

func TestOpenAIEmbedderAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "text-embed" {
			t.Errorf("model = %q", req.Model)
		}
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		resp := struct {
			Object string `json:"object"`
			Data   []item `json:"data"`
			Model  string `json:"model"`
		}{Object: "list", Model: req.Model}
		for i, in := range req.Input {
			resp.Data = append(resp.Data, item{Object: "embedding", Embedding: []float32{float32(len(in)), 1}, Index: i})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	embedder, err := NewEmbedder(&config.LLMConfig{
		Provider: config.ProviderOpenAI,
		BaseURL:  srv.URL,
		Key:      "Bearer secret",
		Model:    "text-embed",
	})
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}

	vectors, err := EmbedChunks(context.Background(), embedder, []string{"one", "three"})
	if err != nil {
		t.Fatalf("EmbedChunks: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 3 || vectors[1][0] != 5 {
		t.Errorf("vectors = %v", vectors)
	}
}

func TestNewEmbedderProviders(t *testing.T) {
	if _, err := NewEmbedder(&config.LLMConfig{Provider: config.ProviderOllama, BaseURL: "http://localhost:11434", Model: "all-minilm"}); err != nil {
		t.Errorf("ollama: %v", err)
	}
	if _, err := NewEmbedder(&config.LLMConfig{Provider: "word2vec"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
