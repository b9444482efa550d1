// Package session holds the state that outlives one pipeline execution but
// not the operator session: challenge status, cached narrative, the editable
// draft and the webhook target.
//
// A Session is created when the operator surface starts and is ended when it
// exits. Nothing here is persisted.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"crypto-narrator/internal/types"
)

type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	challenge  types.ChallengeState
	narrative  *types.GenerationResult
	draft      string
	webhookURL string
}

func newSession(challenge types.ChallengeState, webhookURL string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		challenge:  challenge,
		webhookURL: webhookURL,
	}
}

func (s *Session) Challenge() types.ChallengeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.challenge
}

func (s *Session) SetChallenge(st types.ChallengeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Verified is terminal for the session.
	if s.challenge.Passed {
		return
	}
	s.challenge = st
}

func (s *Session) Passed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.challenge.Passed
}

// Cached returns the original generation, nil until the first success.
func (s *Session) Cached() *types.GenerationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.narrative == nil {
		return nil
	}
	cp := *s.narrative
	return &cp
}

// Cache stores the first successful generation and seeds the draft with it.
// A second call while a result is cached is ignored.
func (s *Session) Cache(res *types.GenerationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.narrative != nil || res == nil {
		return
	}
	cp := *res
	s.narrative = &cp
	s.draft = res.Text
}

// Edit replaces the operator draft. The cached generation is left untouched.
func (s *Session) Edit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// ResetNarrative drops the cached generation so the next run generates again.
// The draft is kept until the new generation replaces it.
func (s *Session) ResetNarrative() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.narrative = nil
}

func (s *Session) WebhookURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.webhookURL
}

func (s *Session) SetWebhookURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhookURL = u
}
