package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taleloom/tale-engine/pkg/story"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	mu         sync.Mutex
	characters map[uuid.UUID]*story.Character
	stories    map[uuid.UUID]*story.Story
	pingError  error
	saveError  error
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		characters: make(map[uuid.UUID]*story.Character),
		stories:    make(map[uuid.UUID]*story.Story),
	}
}

// SetPingError configures the mock to fail on ping with the given error.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on story writes.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) CreateCharacter(ctx context.Context, c *story.Character) error {
	if c == nil {
		return errors.New("character cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	stored := *c
	m.characters[c.ID] = &stored
	return nil
}

func (m *MockStorage) GetCharacter(ctx context.Context, id uuid.UUID) (*story.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.characters[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (m *MockStorage) CreateStory(ctx context.Context, st *story.Story) error {
	if st == nil {
		return errors.New("story cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveError != nil {
		return m.saveError
	}

	st.ID = uuid.New()
	st.Version = 1
	now := time.Now()
	st.CreatedAt = now
	st.UpdatedAt = now

	stored := st.Clone()
	stored.Character = nil
	m.stories[st.ID] = stored
	return nil
}

func (m *MockStorage) GetStory(ctx context.Context, id uuid.UUID) (*story.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stories[id]
	if !ok {
		return nil, nil
	}
	return st.Clone(), nil
}

func (m *MockStorage) SaveStory(ctx context.Context, st *story.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveError != nil {
		return m.saveError
	}

	current, ok := m.stories[st.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != st.Version {
		return fmt.Errorf("%w: have %d, stored %d", ErrConflict, st.Version, current.Version)
	}

	st.Version++
	st.UpdatedAt = time.Now()

	stored := st.Clone()
	stored.Character = nil
	m.stories[st.ID] = stored
	return nil
}
