package dialogue

import (
	"sync"
	"time"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionStore keeps bounded conversation histories keyed by call session id.
// The first entry of every session is the immutable system message; it is
// never evicted by truncation.
type SessionStore interface {
	Exists(id string) bool
	Create(id string, system Message)
	Append(id string, msg Message)
	History(id string) []Message
	Len(id string) int
	Delete(id string)
	EvictIdle(idleFor time.Duration) int
}

// DefaultHistoryCap bounds completion request size while preserving persona
// grounding indefinitely.
const DefaultHistoryCap = 20

type session struct {
	messages   []Message
	lastActive time.Time
}

// MemoryStore is the in-process SessionStore. Sessions live until the
// dialogue terminates, an explicit reset, or idle eviction.
type MemoryStore struct {
	mu       sync.Mutex
	cap      int
	sessions map[string]*session
}

// NewMemoryStore creates a session store with the given history cap
// (DefaultHistoryCap when <= 1).
func NewMemoryStore(historyCap int) *MemoryStore {
	if historyCap <= 1 {
		historyCap = DefaultHistoryCap
	}
	return &MemoryStore{
		cap:      historyCap,
		sessions: make(map[string]*session),
	}
}

func (s *MemoryStore) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

// Create initializes a session with its system message. Creating an existing
// session is a no-op so a racing webhook cannot wipe history.
func (s *MemoryStore) Create(id string, system Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		return
	}
	s.sessions[id] = &session{
		messages:   []Message{system},
		lastActive: time.Now(),
	}
}

// Append adds a message and truncates to the cap, always retaining the system
// message at index 0 plus the most recent cap-1 entries.
func (s *MemoryStore) Append(id string, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.messages = append(sess.messages, msg)
	if len(sess.messages) > s.cap {
		trimmed := make([]Message, 0, s.cap)
		trimmed = append(trimmed, sess.messages[0])
		trimmed = append(trimmed, sess.messages[len(sess.messages)-(s.cap-1):]...)
		sess.messages = trimmed
	}
	sess.lastActive = time.Now()
}

// History returns a copy of the session's messages, oldest first. Nil when
// the session does not exist.
func (s *MemoryStore) History(id string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	out := make([]Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

func (s *MemoryStore) Len(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return 0
	}
	return len(sess.messages)
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// EvictIdle removes sessions with no activity for idleFor and returns how
// many were dropped. Calls that never reach a terminal state would otherwise
// leak for the process lifetime.
func (s *MemoryStore) EvictIdle(idleFor time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-idleFor)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Count returns the number of live sessions.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
