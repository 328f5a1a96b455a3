package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/citations"
	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
	"github.com/custodia-labs/clinref/internal/core/ports/driving"
	"github.com/custodia-labs/clinref/internal/metrics"
)

const (
	conversationTitleLength  = 80
	maxFeedbackCommentLength = 2000
	defaultConversationLimit = 20
	maxConversationLimit     = 100
)

// Ensure assistantService implements AssistantService
var _ driving.AssistantService = (*assistantService)(nil)

type assistantService struct {
	streamer      driven.AnswerStreamer
	conversations driven.ConversationStore
	users         driven.UserStore
	cache         driven.SummaryCache
	catalog       driven.DatabaseCatalog
	pipeline      *citations.Pipeline
	logger        *zap.Logger
	now           func() time.Time
}

// AssistantDeps groups the collaborators of the assistant service
type AssistantDeps struct {
	Streamer      driven.AnswerStreamer
	Conversations driven.ConversationStore
	Users         driven.UserStore
	Cache         driven.SummaryCache // optional; makes answers openable in panels
	Catalog       driven.DatabaseCatalog
	Pipeline      *citations.Pipeline
	Logger        *zap.Logger
}

// NewAssistantService creates a new AssistantService
func NewAssistantService(deps AssistantDeps) driving.AssistantService {
	if deps.Pipeline == nil {
		deps.Pipeline = citations.NewPipeline()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &assistantService{
		streamer:      deps.Streamer,
		conversations: deps.Conversations,
		users:         deps.Users,
		cache:         deps.Cache,
		catalog:       deps.Catalog,
		pipeline:      deps.Pipeline,
		logger:        deps.Logger,
		now:           time.Now,
	}
}

// Ask streams an answer to sink. Chunks and statuses are forwarded as they
// arrive; the first completion finalizes the answer and anything after it
// is dropped. The completed thread is rendered, persisted and sent last.
func (s *assistantService) Ask(ctx context.Context, authCtx *domain.AuthContext, req domain.AskRequest, sink driving.EventSink) (*domain.Thread, error) {
	if authCtx == nil {
		return nil, domain.ErrUnauthorized
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.ErrInvalidInput
	}
	if sink == nil {
		sink = func(domain.StreamEvent) {}
	}

	user, err := s.users.Get(ctx, authCtx.UserID)
	if err != nil {
		return nil, err
	}
	if !user.CanAsk() {
		return nil, domain.ErrForbidden
	}

	conv, created, err := s.conversationFor(ctx, user.ID, req.ConversationID, question)
	if err != nil {
		return nil, err
	}
	backendThread := ""
	if !created {
		backendThread = lastBackendThread(ctx, s.conversations, conv.ID)
	}

	country := req.Country
	if country == "" {
		country = user.Profile.Country
	}

	var (
		partial    strings.Builder
		completion *domain.StreamCompletion
	)
	handler := guardStream(domain.StreamHandler{
		OnChunk: func(text string) {
			partial.WriteString(text)
			sink(domain.StreamEvent{Type: domain.StreamEventChunk, Text: text, ConversationID: conv.ID})
		},
		OnStatus: func(status domain.StreamStatus) {
			st := status
			sink(domain.StreamEvent{Type: domain.StreamEventStatus, Status: &st, ConversationID: conv.ID})
		},
		OnComplete: func(c domain.StreamCompletion) {
			completion = &c
		},
	}, func(kind domain.StreamEventType) {
		metrics.StreamChunksDropped.Inc()
		s.logger.Debug("dropped stream event after completion",
			zap.String("conversation_id", conv.ID),
			zap.String("event", string(kind)))
	})

	metrics.StreamsActive.Inc()
	streamErr := s.streamer.StreamAnswer(ctx, driven.AnswerRequest{
		Question:       question,
		Country:        country,
		Database:       s.catalog.GuidelineDatabase(country),
		ConversationID: conv.ID,
		ThreadID:       backendThread,
	}, handler)
	metrics.StreamsActive.Dec()

	if completion == nil {
		if streamErr == nil {
			streamErr = fmt.Errorf("answer stream ended without completion: %w", domain.ErrServiceUnavailable)
		}
		sink(domain.StreamEvent{Type: domain.StreamEventError, Error: publicStreamError(streamErr), ConversationID: conv.ID})
		return nil, streamErr
	}
	if streamErr != nil {
		s.logger.Warn("answer stream failed after completion",
			zap.String("conversation_id", conv.ID), zap.Error(streamErr))
	}

	thread, err := s.finalize(ctx, user.ID, conv, created, question, *completion, partial.String())
	if err != nil {
		sink(domain.StreamEvent{Type: domain.StreamEventError, Error: publicStreamError(err), ConversationID: conv.ID})
		return nil, err
	}

	sink(domain.StreamEvent{Type: domain.StreamEventComplete, Thread: thread, ConversationID: conv.ID})
	return thread, nil
}

// finalize stores the completed thread. A conversation created for this
// question is only persisted here, so failed streams leave no empty entry.
func (s *assistantService) finalize(ctx context.Context, userID string, conv *domain.Conversation, created bool, question string, c domain.StreamCompletion, partial string) (*domain.Thread, error) {
	answer := c.Answer
	if answer == "" {
		answer = partial
	}

	rendered, err := s.pipeline.Render(answer, c.Citations, citations.NewOccurrenceCounter())
	if err != nil {
		return nil, err
	}

	now := s.now()
	thread := &domain.Thread{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Question:       question,
		Answer:         answer,
		HTML:           rendered.HTML,
		Citations:      c.Citations,
		Sources:        c.Sources,
		PageReferences: c.PageReferences,
		BackendThread:  c.ThreadID,
		CreatedAt:      now,
	}
	conv.UpdatedAt = now
	if created {
		if err := s.conversations.SaveConversation(ctx, conv); err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
	}

	if err := s.conversations.SaveThread(ctx, thread); err != nil {
		if created {
			if derr := s.conversations.DeleteConversation(ctx, conv.ID); derr != nil {
				s.logger.Warn("failed to remove empty conversation", zap.String("conversation_id", conv.ID), zap.Error(derr))
			}
		}
		return nil, fmt.Errorf("save thread: %w", err)
	}

	if !created {
		if err := s.conversations.SaveConversation(ctx, conv); err != nil {
			s.logger.Warn("failed to touch conversation", zap.String("conversation_id", conv.ID), zap.Error(err))
		}
	}

	if s.cache != nil && len(c.Sources) > 0 {
		unit := &domain.GuidelineSummary{
			ID:             thread.ID,
			Title:          question,
			Summary:        answer,
			HTML:           rendered.HTML,
			Sources:        c.Sources,
			PageReferences: c.PageReferences,
			Citations:      c.Citations,
			Occurrences:    rendered.Occurrences,
			OwnerID:        userID,
			CreatedAt:      now,
		}
		if err := s.cache.Put(ctx, unit); err != nil {
			s.logger.Warn("failed to cache answer sources", zap.String("thread_id", thread.ID), zap.Error(err))
		}
	}
	return thread, nil
}

// conversationFor returns the conversation to append to. A new one is built
// in memory only and reported as created.
func (s *assistantService) conversationFor(ctx context.Context, userID, id, question string) (*domain.Conversation, bool, error) {
	if id != "" {
		conv, err := s.ownedConversation(ctx, userID, id)
		return conv, false, err
	}

	now := s.now()
	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     conversationTitle(question),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return conv, true, nil
}

// ListConversations lists the user's conversations, most recent first
func (s *assistantService) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*domain.Conversation, error) {
	if offset < 0 {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	if limit > maxConversationLimit {
		limit = maxConversationLimit
	}

	convs, err := s.conversations.ListConversations(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []*domain.Conversation{}
	}
	return convs, nil
}

// GetConversation returns a conversation with its threads in order
func (s *assistantService) GetConversation(ctx context.Context, userID, id string) (*domain.ConversationWithThreads, error) {
	conv, err := s.ownedConversation(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	threads, err := s.conversations.ListThreads(ctx, id)
	if err != nil {
		return nil, err
	}
	if threads == nil {
		threads = []*domain.Thread{}
	}
	return &domain.ConversationWithThreads{Conversation: conv, Threads: threads}, nil
}

// DeleteConversation deletes a conversation with its threads and feedback
func (s *assistantService) DeleteConversation(ctx context.Context, userID, id string) error {
	if _, err := s.ownedConversation(ctx, userID, id); err != nil {
		return err
	}
	return s.conversations.DeleteConversation(ctx, id)
}

// SubmitFeedback records a rating on one thread of the user's conversation
func (s *assistantService) SubmitFeedback(ctx context.Context, userID, conversationID, threadID string, req domain.FeedbackRequest) (*domain.Feedback, error) {
	if !req.Rating.Valid() {
		return nil, domain.ErrInvalidInput
	}
	comment := strings.TrimSpace(req.Comment)
	if utf8.RuneCountInString(comment) > maxFeedbackCommentLength {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.ownedConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	thread, err := s.conversations.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread.ConversationID != conversationID {
		return nil, domain.ErrNotFound
	}

	fb := &domain.Feedback{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		ThreadID:       threadID,
		UserID:         userID,
		Rating:         req.Rating,
		Comment:        comment,
		CreatedAt:      s.now(),
	}
	if err := s.conversations.SaveFeedback(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *assistantService) ownedConversation(ctx context.Context, userID, id string) (*domain.Conversation, error) {
	conv, err := s.conversations.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return conv, nil
}

// lastBackendThread returns the backend thread ID of the latest thread so
// the backend can continue the same conversation context.
func lastBackendThread(ctx context.Context, store driven.ConversationStore, conversationID string) string {
	threads, err := store.ListThreads(ctx, conversationID)
	if err != nil || len(threads) == 0 {
		return ""
	}
	return threads[len(threads)-1].BackendThread
}

func conversationTitle(question string) string {
	if utf8.RuneCountInString(question) <= conversationTitleLength {
		return question
	}
	r := []rune(question)
	return strings.TrimSpace(string(r[:conversationTitleLength])) + "..."
}

func publicStreamError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, domain.ErrServiceUnavailable):
		return "The answer service is unavailable. Please try again."
	default:
		return "The answer could not be completed."
	}
}
