package domain

import "time"

// Conversation groups the question/answer threads of one chat
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Thread is one question and its streamed answer
type Thread struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	HTML           string         `json:"html,omitempty"`
	Citations      CitationMap    `json:"citations,omitempty"`
	Sources        SourceDocument `json:"sources,omitempty"`
	PageReferences PageReference  `json:"page_references,omitempty"`
	BackendThread  string         `json:"backend_thread_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ConversationWithThreads is a conversation with its threads in creation order
type ConversationWithThreads struct {
	*Conversation
	Threads []*Thread `json:"threads"`
}

// FeedbackRating is a thumbs-up or thumbs-down on an answer
type FeedbackRating string

const (
	RatingHelpful    FeedbackRating = "helpful"
	RatingNotHelpful FeedbackRating = "not_helpful"
)

// Feedback is attached to one thread
type Feedback struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	ThreadID       string         `json:"thread_id"`
	UserID         string         `json:"user_id"`
	Rating         FeedbackRating `json:"rating"`
	Comment        string         `json:"comment,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Valid reports whether the rating is known
func (r FeedbackRating) Valid() bool {
	return r == RatingHelpful || r == RatingNotHelpful
}

// AskRequest starts or continues a conversation
type AskRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Question       string `json:"question"`
	Country        string `json:"country,omitempty"`
}

// FeedbackRequest submits feedback on a thread
type FeedbackRequest struct {
	Rating  FeedbackRating `json:"rating"`
	Comment string         `json:"comment,omitempty"`
}
