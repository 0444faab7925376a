package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"pdfchat/internal/llmservice"
	"pdfchat/internal/models"
)

type State int32

const (
	StateEmpty State = iota
	StateIndexed
	StateAnswering
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateIndexed:
		return "indexed"
	case StateAnswering:
		return "answering"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Retriever finds the chunks most similar to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.Chunk, error)
}

// Reply is a successful answer together with the chunks it was grounded on.
type Reply struct {
	Answer  string
	Sources []models.Chunk
}

// RAG answers questions against the current index, carrying the history of
// answered turns into every prompt.
type RAG struct {
	llm  llmservice.ChatModel
	topK int

	mu        sync.Mutex
	state     atomic.Int32
	retriever Retriever
	history   []models.Turn
}

func NewRAG(llm llmservice.ChatModel, topK int) *RAG {
	return &RAG{llm: llm, topK: topK}
}

func (r *RAG) State() State {
	return State(r.state.Load())
}

// Reset installs a freshly built index and forgets the previous conversation.
func (r *RAG) Reset(retriever Retriever) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retriever = retriever
	r.history = nil
	if retriever == nil {
		r.state.Store(int32(StateEmpty))
		return
	}
	r.state.Store(int32(StateIndexed))
}

// History returns a copy of the answered turns, oldest first.
func (r *RAG) History() []models.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Turn, len(r.history))
	copy(out, r.history)
	return out
}

// Query retrieves context for question, asks the model and records the turn.
// On failure the history is left untouched.
func (r *RAG) Query(ctx context.Context, question string) (*Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.retriever == nil {
		return nil, models.ErrNotReady
	}
	r.state.Store(int32(StateAnswering))
	defer r.state.Store(int32(StateIndexed))

	docs, err := r.retriever.Retrieve(ctx, question, r.topK)
	if err != nil {
		log.Error().Err(err).Msg("Retrieval failed")
		return nil, &models.ModelCallError{Stage: "retrieve", Err: err}
	}
	log.Debug().Int("chunks", len(docs)).Msg("Retrieved context")

	answer, err := r.llm.Complete(ctx, BuildMessages(docs, r.history, question))
	if err != nil {
		log.Error().Err(err).Msg("Chat completion failed")
		return nil, &models.ModelCallError{Stage: "chat completion", Err: err}
	}

	r.history = append(r.history, models.Turn{Question: question, Answer: answer})
	return &Reply{Answer: answer, Sources: docs}, nil
}

// BuildMessages lays out the prompt: instructions and retrieved context, then
// every prior turn in order, then the new question.
func BuildMessages(docs []models.Chunk, history []models.Turn, question string) []models.Message {
	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
	}

	messages := make([]models.Message, 0, 2+2*len(history))
	messages = append(messages, models.Message{
		Role:    models.RoleSystem,
		Content: fmt.Sprintf(models.SystemPromptTemplate, strings.Join(contents, models.ContextSeparator)),
	})
	for _, turn := range history {
		messages = append(messages,
			models.Message{Role: models.RoleUser, Content: turn.Question},
			models.Message{Role: models.RoleAssistant, Content: turn.Answer},
		)
	}
	messages = append(messages, models.Message{Role: models.RoleUser, Content: question})
	return messages
}
