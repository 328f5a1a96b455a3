package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// sseWriter writes stream events to the browser. Headers are sent with the
// first event so failures before the stream starts keep a plain status code.
type sseWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
	logger  *zap.Logger
}

func newSSEWriter(w http.ResponseWriter, logger *zap.Logger) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	return &sseWriter{w: w, flusher: flusher, logger: logger}, true
}

func (s *sseWriter) start() {
	if s.started {
		return
	}
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // Disable nginx buffering
	s.w.WriteHeader(http.StatusOK)
	s.started = true
}

// Send writes one event
func (s *sseWriter) Send(ev domain.StreamEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("failed to encode stream event", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.start()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		s.logger.Debug("client went away during stream", zap.Error(err))
		return
	}
	s.flusher.Flush()
}

// Started reports whether any event was written
func (s *sseWriter) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// handleAsk godoc
// @Summary      Ask the assistant
// @Description  Streams the answer as text/event-stream events: status, chunk, then one complete (or error) event carrying the saved thread.
// @Tags         Assistant
// @Accept       json
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        request  body      domain.AskRequest  true  "Question"
// @Success      200      {object}  domain.StreamEvent
// @Failure      403      {object}  ErrorResponse  "NDA not accepted"
// @Router       /assistant/ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	var req domain.AskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stream, ok := newSSEWriter(w, s.logger)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	_, err := s.assistantService.Ask(r.Context(), authCtx, req, stream.Send)
	if err != nil && !stream.Started() {
		s.writeServiceError(w, err, "failed to answer question")
		return
	}
	if err != nil {
		s.logger.Debug("answer stream ended with error",
			zap.String("user_id", authCtx.UserID), zap.Error(err))
	}
}

// Conversation endpoints

// handleListConversations godoc
// @Summary      List conversations
// @Tags         Assistant
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   domain.Conversation
// @Router       /conversations [get]
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	convs, err := s.assistantService.ListConversations(r.Context(), authCtx.UserID, limit, offset)
	if err != nil {
		s.writeServiceError(w, err, "failed to list conversations")
		return
	}
	if convs == nil {
		convs = []*domain.Conversation{}
	}

	writeJSON(w, http.StatusOK, convs)
}

// handleGetConversation godoc
// @Summary      Get a conversation with its threads
// @Tags         Assistant
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  domain.ConversationWithThreads
// @Router       /conversations/{id} [get]
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	conv, err := s.assistantService.GetConversation(r.Context(), authCtx.UserID, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err, "failed to load conversation")
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// handleDeleteConversation godoc
// @Summary      Delete a conversation
// @Tags         Assistant
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  StatusResponse
// @Router       /conversations/{id} [delete]
func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	if err := s.assistantService.DeleteConversation(r.Context(), authCtx.UserID, r.PathValue("id")); err != nil {
		s.writeServiceError(w, err, "failed to delete conversation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleFeedback godoc
// @Summary      Rate an answer
// @Tags         Assistant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string                  true  "Conversation ID"
// @Param        threadID  path      string                  true  "Thread ID"
// @Param        request   body      domain.FeedbackRequest  true  "Rating"
// @Success      201       {object}  domain.Feedback
// @Router       /conversations/{id}/threads/{threadID}/feedback [post]
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	var req domain.FeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fb, err := s.assistantService.SubmitFeedback(r.Context(), authCtx.UserID, r.PathValue("id"), r.PathValue("threadID"), req)
	if err != nil {
		s.writeServiceError(w, err, "failed to save feedback")
		return
	}

	writeJSON(w, http.StatusCreated, fb)
}
