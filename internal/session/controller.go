package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pdfchat/internal/chromemdb"
	"pdfchat/internal/config"
	"pdfchat/internal/embedding"
	"pdfchat/internal/helper"
	"pdfchat/internal/llmservice"
	"pdfchat/internal/models"
	"pdfchat/internal/parser"
	"pdfchat/internal/rag"
)

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
	OutcomeNotReady
	OutcomeBusy
	OutcomeConfig
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeNotReady:
		return "not_ready"
	case OutcomeBusy:
		return "busy"
	case OutcomeConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Outcome is the user facing result of one action.
type Outcome struct {
	Kind     OutcomeKind
	Message  string
	Warnings []string
	Err      error
}

func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// Controller wires user actions to extraction, chunking, indexing and answering.
type Controller struct {
	cfgErr   error
	chunker  *parser.Chunker
	embedder embeddings.Embedder
	chat     llmservice.ChatModel
	topK     int
	now      func() time.Time
}

// NewController builds the pipeline from cfg. Invalid or incomplete settings do
// not fail construction; they are reported by every action instead.
func NewController(cfg *config.Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		var cerr *models.ConfigurationError
		if !errors.As(err, &cerr) {
			return nil, err
		}
		log.Warn().Str("field", cerr.Field).Msg(cerr.Error())
		return &Controller{cfgErr: cerr, now: time.Now}, nil
	}

	chunker, err := parser.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	chat, err := llmservice.NewChatModel(&cfg.Chat)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewControllerWith(chunker, embedder, chat, cfg.RAG.TopK), nil
}

func NewControllerWith(chunker *parser.Chunker, embedder embeddings.Embedder, chat llmservice.ChatModel, topK int) *Controller {
	return &Controller{
		chunker:  chunker,
		embedder: embedder,
		chat:     chat,
		topK:     topK,
		now:      time.Now,
	}
}

// ConfigError is the configuration problem blocking all actions, if any.
func (c *Controller) ConfigError() error {
	return c.cfgErr
}

func (c *Controller) NewSession() (*Session, error) {
	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	return newSession(id, rag.NewRAG(c.chat, c.topK), c.now()), nil
}

// Process extracts, chunks and indexes docs. A failure at any step leaves the
// previously processed document set and its conversation in place.
func (c *Controller) Process(ctx context.Context, s *Session, docs []models.Document) Outcome {
	if !s.action.TryLock() {
		return Outcome{Kind: OutcomeBusy, Message: models.MsgBusy}
	}
	defer s.action.Unlock()
	s.touch(c.now())

	if s.isClosed() {
		return Outcome{Kind: OutcomeFailure, Message: models.MsgSessionClosed, Err: models.ErrSessionClosed}
	}
	if c.cfgErr != nil {
		return Outcome{Kind: OutcomeConfig, Message: c.cfgErr.Error(), Err: c.cfgErr}
	}

	logger := log.With().Str("session", s.ID).Int("documents", len(docs)).Logger()
	if len(docs) == 0 {
		return Outcome{
			Kind:    OutcomeFailure,
			Message: models.MsgNoDocuments,
			Err:     &models.EmptyInputError{Reason: models.ReasonNoDocuments},
		}
	}

	text, failures := parser.Extract(docs)
	var warnings []string
	for _, f := range failures {
		warnings = append(warnings, fmt.Sprintf(models.MsgExtractWarningFmt, f.File, f.Err))
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn().Int("failed", len(failures)).Msg("No text extracted")
		return Outcome{
			Kind:     OutcomeFailure,
			Message:  models.MsgNoText,
			Warnings: warnings,
			Err:      &models.EmptyInputError{Reason: models.ReasonNoText},
		}
	}

	chunks, err := c.chunker.Chunk(text)
	if err != nil {
		logger.Error().Err(err).Msg("Chunking failed")
		return Outcome{Kind: OutcomeFailure, Message: models.MsgProcessingError, Warnings: warnings, Err: err}
	}
	if len(chunks) == 0 {
		return Outcome{
			Kind:     OutcomeFailure,
			Message:  models.MsgNoChunks,
			Warnings: warnings,
			Err:      &models.EmptyInputError{Reason: models.ReasonNoChunks},
		}
	}

	index, err := chromemdb.Build(ctx, c.embedder, chunks)
	if err != nil {
		logger.Error().Err(err).Msg("Index build failed")
		return Outcome{
			Kind:     OutcomeFailure,
			Message:  models.MsgIndexFailed,
			Warnings: warnings,
			Err:      &models.IndexBuildError{Err: err},
		}
	}

	stats := models.ProcessStats{
		Documents: len(docs) - len(failures),
		Chars:     utf8.RuneCountInString(text),
		Chunks:    len(chunks),
		Warnings:  warnings,
	}
	s.install(index, stats)
	logger.Info().Int("chunks", stats.Chunks).Int("chars", stats.Chars).Msg("Processed documents")
	return Outcome{Kind: OutcomeSuccess, Message: models.MsgProcessed, Warnings: warnings}
}

// Ask answers question against the session's index. The transcript records the
// question and either the answer or a single failure entry.
func (c *Controller) Ask(ctx context.Context, s *Session, question string) Outcome {
	if !s.action.TryLock() {
		return Outcome{Kind: OutcomeBusy, Message: models.MsgBusy}
	}
	defer s.action.Unlock()
	s.touch(c.now())

	if s.isClosed() {
		return Outcome{Kind: OutcomeFailure, Message: models.MsgSessionClosed, Err: models.ErrSessionClosed}
	}
	if c.cfgErr != nil {
		return Outcome{Kind: OutcomeConfig, Message: c.cfgErr.Error(), Err: c.cfgErr}
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return Outcome{Kind: OutcomeFailure, Message: models.MsgEmptyQuestion}
	}
	if !s.Processed() {
		return Outcome{Kind: OutcomeNotReady, Message: models.MsgNotProcessed, Err: models.ErrNotReady}
	}

	reply, err := s.conv.Query(ctx, question)
	if errors.Is(err, models.ErrNotReady) {
		return Outcome{Kind: OutcomeNotReady, Message: models.MsgNotProcessed, Err: err}
	}

	user := models.TranscriptEntry{Role: models.RoleUser, Content: question}
	if err != nil {
		msg := fmt.Sprintf(models.MsgAnswerFailedFmt, err)
		s.appendEntries(user, models.TranscriptEntry{Role: models.RoleAssistant, Content: msg, Failed: true})
		return Outcome{Kind: OutcomeFailure, Message: msg, Err: err}
	}

	s.appendEntries(user, models.TranscriptEntry{
		Role:    models.RoleAssistant,
		Content: reply.Answer,
		Sources: reply.Sources,
	})
	return Outcome{Kind: OutcomeSuccess}
}
