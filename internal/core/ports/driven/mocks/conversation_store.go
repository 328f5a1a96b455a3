package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

var _ driven.ConversationStore = (*MockConversationStore)(nil)

// MockConversationStore keeps chat history in memory
type MockConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	threads       map[string]*domain.Thread
	Feedback      []*domain.Feedback
	SaveThreadErr error
}

// NewMockConversationStore creates a new MockConversationStore
func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{
		conversations: make(map[string]*domain.Conversation),
		threads:       make(map[string]*domain.Thread),
	}
}

func (m *MockConversationStore) SaveConversation(ctx context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[conv.ID] = conv
	return nil
}

func (m *MockConversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.conversations[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockConversationStore) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Conversation
	for _, c := range m.conversations {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockConversationStore) DeleteConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conversations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.conversations, id)
	for tid, t := range m.threads {
		if t.ConversationID == id {
			delete(m.threads, tid)
		}
	}
	return nil
}

func (m *MockConversationStore) SaveThread(ctx context.Context, thread *domain.Thread) error {
	if m.SaveThreadErr != nil {
		return m.SaveThreadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads[thread.ID] = thread
	return nil
}

func (m *MockConversationStore) GetThread(ctx context.Context, id string) (*domain.Thread, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.threads[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockConversationStore) ListThreads(ctx context.Context, conversationID string) ([]*domain.Thread, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Thread
	for _, t := range m.threads {
		if t.ConversationID == conversationID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockConversationStore) SaveFeedback(ctx context.Context, feedback *domain.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Feedback = append(m.Feedback, feedback)
	return nil
}
