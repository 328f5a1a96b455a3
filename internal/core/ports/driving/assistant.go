package driving

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// EventSink receives the events of one answer stream in order
type EventSink func(domain.StreamEvent)

// AssistantService runs the conversational assistant
type AssistantService interface {
	// Ask streams an answer into sink and persists the completed thread.
	// It blocks until the stream ends.
	Ask(ctx context.Context, user *domain.AuthContext, req domain.AskRequest, sink EventSink) (*domain.Thread, error)

	// ListConversations lists the user's conversations, most recent first
	ListConversations(ctx context.Context, userID string, limit, offset int) ([]*domain.Conversation, error)

	// GetConversation returns a conversation with its threads
	GetConversation(ctx context.Context, userID, id string) (*domain.ConversationWithThreads, error)

	// DeleteConversation deletes a conversation with its threads
	DeleteConversation(ctx context.Context, userID, id string) error

	// SubmitFeedback records feedback on a thread
	SubmitFeedback(ctx context.Context, userID, conversationID, threadID string, req domain.FeedbackRequest) (*domain.Feedback, error)
}
