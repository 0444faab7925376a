package llmservice

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pdfchat/internal/config"
	"pdfchat/internal/models"
)

var thinkTagRe = regexp.MustCompile(models.ThinkTag)

// ChatModel sends an ordered, role tagged conversation to a hosted model and
// returns the assistant reply.
type ChatModel interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
}

// NewChatModel returns the chat backend selected by cfg.Provider.
func NewChatModel(cfg *config.LLMConfig) (ChatModel, error) {
	switch cfg.Provider {
	case config.ProviderLangchain, "":
		return NewLangchainChat(cfg)
	case config.ProviderOpenAI:
		return NewOpenAIChat(cfg), nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

// cleanReply drops <think> blocks emitted by reasoning models.
func cleanReply(content string) (string, error) {
	content = strings.TrimSpace(thinkTagRe.ReplaceAllString(content, ""))
	if content == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}
	return content, nil
}
