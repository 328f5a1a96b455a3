package driven

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// ConversationStore persists chat history and feedback (PostgreSQL)
type ConversationStore interface {
	// SaveConversation creates or updates a conversation
	SaveConversation(ctx context.Context, conv *domain.Conversation) error

	// GetConversation retrieves a conversation by ID
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// ListConversations lists a user's conversations, most recent first
	ListConversations(ctx context.Context, userID string, limit, offset int) ([]*domain.Conversation, error)

	// DeleteConversation deletes a conversation with its threads and feedback
	DeleteConversation(ctx context.Context, id string) error

	// SaveThread stores a completed thread
	SaveThread(ctx context.Context, thread *domain.Thread) error

	// GetThread retrieves a thread by ID
	GetThread(ctx context.Context, id string) (*domain.Thread, error)

	// ListThreads lists the threads of a conversation in creation order
	ListThreads(ctx context.Context, conversationID string) ([]*domain.Thread, error)

	// SaveFeedback stores feedback on a thread
	SaveFeedback(ctx context.Context, feedback *domain.Feedback) error
}
