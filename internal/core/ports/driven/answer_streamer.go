package driven

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// AnswerRequest is sent to the streaming answer endpoint
type AnswerRequest struct {
	Question       string `json:"question"`
	Country        string `json:"country,omitempty"`
	Database       string `json:"database,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	ThreadID       string `json:"thread_id,omitempty"`
}

// AnswerStreamer streams an answer from the backend.
// StreamAnswer blocks until the stream ends. Handler hooks are called from
// the calling goroutine in arrival order; a nil hook is skipped.
type AnswerStreamer interface {
	StreamAnswer(ctx context.Context, req AnswerRequest, handler domain.StreamHandler) error
}
