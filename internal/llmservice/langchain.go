package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"pdfchat/internal/config"
	"pdfchat/internal/models"
)

// Generator is the part of llms.Model used for chat.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LangchainChat calls an OpenAI compatible endpoint (OpenRouter by default) through langchaingo.
type LangchainChat struct {
	llm         Generator
	model       string
	temperature float64
}

func NewLangchainChat(cfg *config.LLMConfig) (*LangchainChat, error) {
	log.Debug().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Msg("Creating langchain chat client")
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}
	return NewLangchainChatWith(llm, cfg.Model, cfg.Temperature), nil
}

func NewLangchainChatWith(llm Generator, model string, temperature float64) *LangchainChat {
	return &LangchainChat{llm: llm, model: model, temperature: temperature}
}

func (c *LangchainChat) Complete(ctx context.Context, messages []models.Message) (string, error) {
	msgContent := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		msgContent = append(msgContent, llms.TextParts(langchainRole(m.Role), m.Content))
	}

	log.Debug().Str("model", c.model).Int("messages", len(msgContent)).Msg("Generating content")
	res, err := c.llm.GenerateContent(ctx, msgContent, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", err
	}
	if res == nil || len(res.Choices) == 0 || res.Choices[0] == nil {
		return "", fmt.Errorf("model returned no choices")
	}
	return cleanReply(res.Choices[0].Content)
}

func langchainRole(r models.Role) llms.ChatMessageType {
	switch r {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
