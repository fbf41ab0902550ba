// Package dialog keeps per-chat conversation state and the step table that
// drives multi-step input.
package dialog

import (
	"context"
	"sync"
	"time"

	"quicksell-bot/internal/models"
)

// Store keeps one Session per chat. Get never returns nil: a chat without
// state, or whose state has expired, gets a fresh idle session.
type Store interface {
	Get(ctx context.Context, chatID int64) (*models.Session, error)
	Save(ctx context.Context, chatID int64, s *models.Session) error
	Clear(ctx context.Context, chatID int64) error
}

// MemoryStore is an in-process Store. Sessions untouched for longer than
// the TTL are dropped.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]models.Session
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[int64]models.Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[chatID]
	if !ok {
		return &models.Session{}, nil
	}
	if m.expired(s) {
		delete(m.sessions, chatID)
		return &models.Session{}, nil
	}
	s.Draft.ShopChoices = cloneChoices(s.Draft.ShopChoices)
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, chatID int64, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.Idle() {
		delete(m.sessions, chatID)
		return nil
	}
	cp := *s
	cp.UpdatedAt = m.now()
	cp.Draft.ShopChoices = cloneChoices(s.Draft.ShopChoices)
	m.sessions[chatID] = cp
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, chatID int64) error {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
	return nil
}

// Sweep removes expired sessions and reports how many were dropped.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len is the number of live sessions, expired ones included until swept.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) expired(s models.Session) bool {
	return m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl
}

func cloneChoices(src map[string]int64) map[string]int64 {
	if src == nil {
		return nil
	}
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
