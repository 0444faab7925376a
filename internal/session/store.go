package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store keeps live sessions by ID. Idle sessions are evicted when new ones
// are created.
type Store struct {
	ctrl *Controller
	ttl  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(ctrl *Controller, ttl time.Duration) *Store {
	return &Store{
		ctrl:     ctrl,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

func (st *Store) Create() (*Session, error) {
	s, err := st.ctrl.NewSession()
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	evicted := st.evictIdleLocked()
	st.sessions[s.ID] = s
	live := len(st.sessions)
	st.mu.Unlock()

	closeAll(evicted)
	log.Debug().Str("session", s.ID).Int("live", live).Msg("Session created")
	return s, nil
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if !ok {
		st.mu.Unlock()
		return nil, false
	}
	if st.ttl > 0 && s.idleSince(st.ctrl.now()) > st.ttl {
		delete(st.sessions, id)
		st.mu.Unlock()
		closeAll([]*Session{s})
		return nil, false
	}
	st.mu.Unlock()

	s.touch(st.ctrl.now())
	return s, true
}

// Close ends a session and releases its index.
func (st *Store) Close(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		closeAll([]*Session{s})
	}
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) evictIdleLocked() []*Session {
	if st.ttl <= 0 {
		return nil
	}
	var evicted []*Session
	now := st.ctrl.now()
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			delete(st.sessions, id)
			evicted = append(evicted, s)
		}
	}
	return evicted
}

// closeAll runs outside the store lock since Close waits for an in-flight answer.
func closeAll(sessions []*Session) {
	for _, s := range sessions {
		s.Close()
		log.Debug().Str("session", s.ID).Msg("Session closed")
	}
}
