package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pdfchat/internal/chromemdb"
	"pdfchat/internal/models"
	"pdfchat/internal/rag"
)

// Session holds everything one user has uploaded and asked. Its state is
// private to the session and torn down by Close.
type Session struct {
	ID string

	// action serializes Process and Ask, a second concurrent action is rejected.
	action sync.Mutex

	conv *rag.RAG

	mu         sync.Mutex
	index      *chromemdb.VectorDBManager
	transcript []models.TranscriptEntry
	processed  bool
	stats      models.ProcessStats
	lastSeen   time.Time
	closed     bool
}

// View is a read-only snapshot used for rendering.
type View struct {
	ID         string                   `json:"id"`
	Processed  bool                     `json:"processed"`
	Stats      models.ProcessStats      `json:"stats"`
	Transcript []models.TranscriptEntry `json:"transcript"`
}

func newSession(id string, conv *rag.RAG, now time.Time) *Session {
	return &Session{ID: id, conv: conv, lastSeen: now}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	transcript := make([]models.TranscriptEntry, len(s.transcript))
	copy(transcript, s.transcript)
	return View{
		ID:         s.ID,
		Processed:  s.processed,
		Stats:      s.stats,
		Transcript: transcript,
	}
}

// Chunks lists the chunks of the current index in order, or nil before processing.
func (s *Session) Chunks() []models.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	return s.index.Chunks()
}

// History exposes the answered turns that feed the next prompt.
func (s *Session) History() []models.Turn {
	return s.conv.History()
}

func (s *Session) Processed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// install swaps in a freshly built index, dropping the previous one together
// with the conversation built on it.
func (s *Session) install(index *chromemdb.VectorDBManager, stats models.ProcessStats) {
	s.conv.Reset(index)

	s.mu.Lock()
	old := s.index
	s.index = index
	s.processed = true
	s.stats = stats
	s.transcript = nil
	s.mu.Unlock()

	if old != nil {
		dropIndex(s.ID, old)
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) appendEntries(entries ...models.TranscriptEntry) {
	s.mu.Lock()
	s.transcript = append(s.transcript, entries...)
	s.mu.Unlock()
}

// Close releases the index and forgets the conversation. It waits for an
// in-flight action to finish; later actions are refused.
func (s *Session) Close() {
	s.action.Lock()
	defer s.action.Unlock()

	s.conv.Reset(nil)

	s.mu.Lock()
	old := s.index
	s.index = nil
	s.processed = false
	s.transcript = nil
	s.stats = models.ProcessStats{}
	s.closed = true
	s.mu.Unlock()

	if old != nil {
		dropIndex(s.ID, old)
	}
}

type collectionDropper interface {
	DeleteCollection() error
}

func dropIndex(sessionID string, index collectionDropper) {
	if err := index.DeleteCollection(); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("Could not drop vector index")
	}
}
