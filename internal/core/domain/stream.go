package domain

// StreamStatus reports backend progress while an answer is generated
type StreamStatus struct {
	Stage   string `json:"stage"`
	Message string `json:"message,omitempty"`
}

// StreamCompletion is the final payload of a streamed answer
type StreamCompletion struct {
	Answer         string         `json:"answer"`
	Citations      CitationMap    `json:"citations,omitempty"`
	Sources        SourceDocument `json:"sources,omitempty"`
	PageReferences PageReference  `json:"page_references,omitempty"`
	ThreadID       string         `json:"thread_id,omitempty"`
}

// StreamHandler receives the three hooks of a streamed answer
type StreamHandler struct {
	OnChunk    func(text string)
	OnStatus   func(status StreamStatus)
	OnComplete func(done StreamCompletion)
}

// StreamEventType names the events forwarded to the browser
type StreamEventType string

const (
	StreamEventChunk    StreamEventType = "chunk"
	StreamEventStatus   StreamEventType = "status"
	StreamEventComplete StreamEventType = "complete"
	StreamEventError    StreamEventType = "error"
)

// StreamEvent is one event written to the browser's event stream
type StreamEvent struct {
	Type           StreamEventType `json:"type"`
	Text           string          `json:"text,omitempty"`
	Status         *StreamStatus   `json:"status,omitempty"`
	Thread         *Thread         `json:"thread,omitempty"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Error          string          `json:"error,omitempty"`
}
