package tokenstore

import (
	"context"
	"sync"

	"github.com/gympulse/gateway/internal/core/ports"
)

// MemorySlots keeps credentials in process memory. Credentials do not survive
// a restart.
type MemorySlots struct {
	mu     sync.RWMutex
	tokens map[string]string
}

var _ ports.TokenSlots = (*MemorySlots)(nil)

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{tokens: make(map[string]string)}
}

func (m *MemorySlots) Slot(sessionID string) ports.TokenStore {
	return &memorySlot{parent: m, key: SlotKey(sessionID)}
}

// Len reports how many slots currently hold a credential.
func (m *MemorySlots) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

type memorySlot struct {
	parent *MemorySlots
	key    string
}

func (s *memorySlot) Get(_ context.Context) (string, bool) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()
	tok, ok := s.parent.tokens[s.key]
	return tok, ok
}

func (s *memorySlot) Set(_ context.Context, token string) error {
	s.parent.mu.Lock()
	s.parent.tokens[s.key] = token
	s.parent.mu.Unlock()
	return nil
}

func (s *memorySlot) Clear(_ context.Context) error {
	s.parent.mu.Lock()
	delete(s.parent.tokens, s.key)
	s.parent.mu.Unlock()
	return nil
}
