package session

import (
	"context"
	"sort"
	"sync"
)

// Store loads and saves sessions. Implementations hand out copies, so a
// loaded session is never shared with another caller.
type Store interface {
	// Create stores a new session. Returns ErrExists if the id is taken.
	Create(ctx context.Context, s Session) error
	// Load returns the session of userID or ErrNotFound.
	Load(ctx context.Context, userID string) (Session, error)
	// Save replaces an existing session. Returns ErrNotFound if it was never
	// created.
	Save(ctx context.Context, s Session) error
	// FindByReferralCode returns the owner of code or ErrNotFound.
	FindByReferralCode(ctx context.Context, code string) (Session, error)
	// List returns every session ordered by creation time.
	List(ctx context.Context) ([]Session, error)
	// Count returns the number of sessions.
	Count(ctx context.Context) int
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*Session
	byCode map[string]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*Session),
		byCode: make(map[string]string),
	}
}

func (m *MemoryStore) Create(_ context.Context, s Session) error { //nolint:gocritic // hugeParam: sessions are copied by contract
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[s.UserID]; ok {
		return ErrExists
	}
	if _, ok := m.byCode[s.ReferralCode]; ok && s.ReferralCode != "" {
		return ErrExists
	}
	c := s.Clone()
	m.byID[s.UserID] = &c
	if s.ReferralCode != "" {
		m.byCode[s.ReferralCode] = s.UserID
	}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, userID string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[userID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error { //nolint:gocritic // hugeParam: sessions are copied by contract
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.byID[s.UserID]
	if !ok {
		return ErrNotFound
	}
	c := s.Clone()
	// the referral code is fixed at creation
	c.ReferralCode = old.ReferralCode
	m.byID[s.UserID] = &c
	return nil
}

func (m *MemoryStore) FindByReferralCode(_ context.Context, code string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byCode[code]
	if !ok {
		return Session{}, ErrNotFound
	}
	return m.byID[id].Clone(), nil
}

func (m *MemoryStore) List(_ context.Context) ([]Session, error) {
	m.mu.RLock()
	out := make([]Session, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (m *MemoryStore) Count(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
