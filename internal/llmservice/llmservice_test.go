package llmservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"pdfchat/internal/config"
	"pdfchat/internal/models"
)

type fakeGenerator struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	resp     *llms.ContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	return f.resp, f.err
}

var conversation = []models.Message{
	{Role: models.RoleSystem, Content: "context"},
	{Role: models.RoleUser, Content: "q1"},
	{Role: models.RoleAssistant, Content: "a1"},
	{Role: models.RoleUser, Content: "q2"},
}

func TestLangchainChatComplete(t *testing.T) {
	gen := &fakeGenerator{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{
		{Content: "<think>\nhmm, let me see\n</think>\n\nThe answer."},
	}}}
	chat := NewLangchainChatWith(gen, "m", 0.1)

	got, err := chat.Complete(context.Background(), conversation)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "The answer." {
		t.Errorf("reply = %q", got)
	}
	if gen.opts.Temperature != 0.1 {
		t.Errorf("temperature = %v", gen.opts.Temperature)
	}

	wantRoles := []llms.ChatMessageType{
		llms.ChatMessageTypeSystem, llms.ChatMessageTypeHuman, llms.ChatMessageTypeAI, llms.ChatMessageTypeHuman,
	}
	if len(gen.messages) != len(wantRoles) {
		t.Fatalf("messages = %d", len(gen.messages))
	}
	for i, m := range gen.messages {
		if m.Role != wantRoles[i] {
			t.Errorf("message %d role = %s, want %s", i, m.Role, wantRoles[i])
		}
		if text := m.Parts[0].(llms.TextContent).Text; text != conversation[i].Content {
			t.Errorf("message %d text = %q", i, text)
		}
	}
}

func TestLangchainChatErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"call error", &fakeGenerator{err: errors.New("429 rate limited")}},
		{"nil response", &fakeGenerator{}},
		{"no choices", &fakeGenerator{resp: &llms.ContentResponse{}}},
		{"only thinking", &fakeGenerator{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "<think>x</think>"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLangchainChatWith(tt.gen, "m", 0).Complete(context.Background(), conversation); err == nil {
				t.Error("expected error")
			}
		})
	}
}

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, got *chatRequest, reply string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   got.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIChatComplete(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, &got, "Paris.", http.StatusOK)
	defer srv.Close()

	chat, err := NewChatModel(&config.LLMConfig{
		Provider:    config.ProviderOpenAI,
		BaseURL:     srv.URL,
		Key:         "sk-test",
		Model:       models.DefaultChatModel,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatal(err)
	}
	reply, err := chat.Complete(context.Background(), conversation)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "Paris." {
		t.Errorf("reply = %q", reply)
	}
	if got.Model != models.DefaultChatModel {
		t.Errorf("model = %q", got.Model)
	}
	if got.Temperature < 0.099 || got.Temperature > 0.101 {
		t.Errorf("temperature = %v", got.Temperature)
	}
	roles := []string{"system", "user", "assistant", "user"}
	for i, m := range got.Messages {
		if m.Role != roles[i] || m.Content != conversation[i].Content {
			t.Errorf("message %d = %+v", i, m)
		}
	}
}

func TestOpenAIChatServerError(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, &got, "", http.StatusServiceUnavailable)
	defer srv.Close()

	chat := NewOpenAIChat(&config.LLMConfig{BaseURL: srv.URL, Key: "sk-test", Model: "m"})
	if _, err := chat.Complete(context.Background(), conversation); err == nil {
		t.Fatal("expected error")
	}
}

func TestLangchainChatAgainstServer(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, &got, "<think>reasoning</think>Berlin.", http.StatusOK)
	defer srv.Close()

	chat, err := NewChatModel(&config.LLMConfig{
		Provider:    config.ProviderLangchain,
		BaseURL:     srv.URL,
		Key:         "Bearer sk-test",
		Model:       "qwen/qwen3-30b-a3b:free",
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatal(err)
	}
	reply, err := chat.Complete(context.Background(), conversation)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "Berlin." {
		t.Errorf("reply = %q", reply)
	}
	if len(got.Messages) != len(conversation) {
		t.Errorf("sent %d messages", len(got.Messages))
	}
}

func TestNewChatModelUnknownProvider(t *testing.T) {
	if _, err := NewChatModel(&config.LLMConfig{Provider: "palm"}); err == nil {
		t.Fatal("expected error")
	}
}
