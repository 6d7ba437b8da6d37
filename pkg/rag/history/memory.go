package history

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"support-assistant-be/pkg/store"
)

const (
	// DefaultMaxMessages is the per-session history bound; oldest entries
	// are evicted first.
	DefaultMaxMessages = 20

	// DefaultMaxIdle is how long an untouched session survives a sweep.
	DefaultMaxIdle = 24 * time.Hour
)

// Memory is the bounded per-session conversation log. Idle sessions are
// dropped by Sweep, which the chat layer calls at startup and periodically
// instead of running a background janitor.
type Memory struct {
	mu          sync.Mutex
	cache       *cache.Cache
	maxMessages int
}

func NewMemory(maxMessages int, maxIdle time.Duration) *Memory {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	// Cleanup interval 0 disables the go-cache janitor; eviction happens
	// only through Sweep.
	return &Memory{
		cache:       cache.New(maxIdle, 0),
		maxMessages: maxMessages,
	}
}

// Append records one message and refreshes the session's idle deadline.
func (m *Memory) Append(sessionID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := m.get(sessionID)
	messages = append(messages, store.ConversationMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if len(messages) > m.maxMessages {
		messages = messages[len(messages)-m.maxMessages:]
	}
	m.cache.Set(sessionID, messages, cache.DefaultExpiration)
}

// Get returns the session's messages in insertion order (oldest first).
func (m *Memory) Get(sessionID string) []store.ConversationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := m.get(sessionID)
	out := make([]store.ConversationMessage, len(messages))
	copy(out, messages)
	return out
}

// Clear drops the session's conversation history (not its knowledge base).
func (m *Memory) Clear(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(sessionID)
}

// Sweep evicts sessions whose last message is older than the idle limit.
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.DeleteExpired()
}

func (m *Memory) get(sessionID string) []store.ConversationMessage {
	if x, found := m.cache.Get(sessionID); found {
		return x.([]store.ConversationMessage)
	}
	return nil
}
