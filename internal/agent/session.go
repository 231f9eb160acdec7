// Package agent implements the document agents and the sessions that carry their
// per-user state between calls.
package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/docstudio/internal/models"
)

// Kind names the agent a session belongs to.
type Kind string

const (
	KindSummarizer Kind = "summarizer"
	KindCompliance Kind = "compliance"
	KindBanner     Kind = "banner"
	KindAnalyst    Kind = "analyst"
)

// ParseKind validates an agent name. Empty means KindCompliance.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "":
		return KindCompliance, nil
	case KindSummarizer, KindCompliance, KindBanner, KindAnalyst:
		return k, nil
	}
	return "", errors.New("unknown agent " + s)
}

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Session holds one user's chat history and locked compliance protocol.
type Session struct {
	ID        string    `json:"id"`
	Agent     Kind      `json:"agent"`
	CreatedAt time.Time `json:"created_at"`

	mu       sync.Mutex
	lastUsed time.Time
	history  []models.ChatMessage
	protocol *models.PromptRecord
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// History returns a copy of the conversation so far.
func (s *Session) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.history...)
}

// Recent returns a copy of the last n messages.
func (s *Session) Recent(n int) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := max(len(s.history)-n, 0)
	return append([]models.ChatMessage(nil), s.history[start:]...)
}

func (s *Session) appendMessages(msgs ...models.ChatMessage) {
	s.mu.Lock()
	s.history = append(s.history, msgs...)
	s.mu.Unlock()
}

// ClearHistory drops the conversation.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

// Protocol returns a copy of the locked protocol, or nil.
func (s *Session) Protocol() *models.PromptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.protocol == nil {
		return nil
	}
	p := *s.protocol
	return &p
}

func (s *Session) setProtocol(p *models.PromptRecord) {
	cp := *p
	s.mu.Lock()
	s.protocol = &cp
	s.mu.Unlock()
}

// Sessions is a concurrency-safe session registry.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session), now: time.Now}
}

// Create registers a new session for agent.
func (r *Sessions) Create(agent Kind) *Session {
	now := r.now()
	s := &Session{ID: uuid.NewString(), Agent: agent, CreatedAt: now.UTC(), lastUsed: now}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with id and marks it as used.
func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Delete removes a session. Unknown ids are ignored.
func (r *Sessions) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions not used for longer than idle and returns how many were removed.
func (r *Sessions) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done. onSweep, if not nil,
// receives the number of sessions removed by each non-empty sweep.
func (r *Sessions) RunSweeper(ctx context.Context, idle, interval time.Duration, onSweep func(removed int)) {
	if idle <= 0 {
		return
	}
	if interval <= 0 {
		interval = idle / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
