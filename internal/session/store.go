package session

import (
	"errors"
	"sync"

	"crypto-narrator/internal/types"
)

var ErrUnknownSession = errors.New("unknown session")

// Store is the in-memory key-value session store. Sessions are isolated from
// each other and vanish with the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create starts a session with an unverified challenge.
func (st *Store) Create(challenge types.ChallengeState, webhookURL string) *Session {
	s := newSession(challenge, webhookURL)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return s, nil
}

// End tears the session down; its challenge and narrative are discarded.
func (st *Store) End(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
