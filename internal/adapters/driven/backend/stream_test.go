package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

type recorder struct {
	events   []string
	chunks   []string
	statuses []domain.StreamStatus
	done     *domain.StreamCompletion
}

func (r *recorder) handler() domain.StreamHandler {
	return domain.StreamHandler{
		OnChunk: func(text string) {
			r.events = append(r.events, "chunk")
			r.chunks = append(r.chunks, text)
		},
		OnStatus: func(s domain.StreamStatus) {
			r.events = append(r.events, "status")
			r.statuses = append(r.statuses, s)
		},
		OnComplete: func(done domain.StreamCompletion) {
			r.events = append(r.events, "complete")
			r.done = &done
		},
	}
}

func sseServer(t *testing.T, body string) *Client {
	t.Helper()
	return newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathAnswerStream, r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, body)
	})
}

func TestStreamAnswer(t *testing.T) {
	body := strings.Join([]string{
		": ping",
		"",
		"event: status",
		`data: {"stage":"searching","message":"Searching guidelines"}`,
		"",
		"event: chunk",
		`data: {"text":"Metformin is "}`,
		"",
		"event: chunk",
		`data: first-line [1].`,
		"",
		"event: complete",
		`data: {"answer":"Metformin is first-line [1].","thread_id":"t-9","sources":{"1":"Metformin is first-line."}}`,
		"",
		"event: chunk",
		`data: {"text":"ignored"}`,
		"",
	}, "\n")
	client := sseServer(t, body)
	rec := &recorder{}

	err := client.StreamAnswer(context.Background(), driven.AnswerRequest{Question: "first line for T2DM?"}, rec.handler())

	require.NoError(t, err)
	assert.Equal(t, []string{"status", "chunk", "chunk", "complete"}, rec.events)
	assert.Equal(t, []string{"Metformin is ", "first-line [1]."}, rec.chunks)
	assert.Equal(t, "searching", rec.statuses[0].Stage)
	require.NotNil(t, rec.done)
	assert.Equal(t, "t-9", rec.done.ThreadID)
	assert.Equal(t, "Metformin is first-line.", rec.done.Sources["1"])
}

func TestStreamAnswer_RequestBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req driven.AnswerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "q", req.Question)
		assert.Equal(t, "gb", req.Country)
		assert.Equal(t, "backend-thread-1", req.ThreadID)
		_, _ = fmt.Fprint(w, "event: complete\ndata: {\"answer\":\"a\"}\n\n")
	})

	err := client.StreamAnswer(context.Background(), driven.AnswerRequest{
		Question: "q",
		Country:  "gb",
		ThreadID: "backend-thread-1",
	}, domain.StreamHandler{})

	require.NoError(t, err)
}

func TestStreamAnswer_MultiLineData(t *testing.T) {
	client := sseServer(t, "event: chunk\ndata: line one\ndata: line two\n\nevent: complete\ndata: {\"answer\":\"x\"}")
	rec := &recorder{}

	err := client.StreamAnswer(context.Background(), driven.AnswerRequest{Question: "q"}, rec.handler())

	require.NoError(t, err, "a trailing event without a blank line is still delivered")
	assert.Equal(t, []string{"line one\nline two"}, rec.chunks)
	require.NotNil(t, rec.done)
}

func TestStreamAnswer_Failures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantEvents []string
		message    string
	}{
		{
			name:       "error event",
			body:       "event: chunk\ndata: {\"text\":\"partial\"}\n\nevent: error\ndata: {\"error\":\"model overloaded\"}\n\n",
			wantEvents: []string{"chunk"},
			message:    "model overloaded",
		},
		{
			name:       "error event without payload",
			body:       "event: error\ndata: {}\n\n",
			wantEvents: nil,
			message:    "answer generation failed",
		},
		{
			name:       "closed before completion",
			body:       "event: status\ndata: {\"stage\":\"thinking\"}\n\n",
			wantEvents: []string{"status"},
			message:    "stream closed before completion",
		},
		{
			name:       "malformed completion",
			body:       "event: complete\ndata: {oops\n\n",
			wantEvents: nil,
			message:    "decode completion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := sseServer(t, tt.body)
			rec := &recorder{}

			err := client.StreamAnswer(context.Background(), driven.AnswerRequest{Question: "q"}, rec.handler())

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
			var be *domain.BackendError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, streamOp, be.Operation)
			assert.Contains(t, be.Message, tt.message)
			assert.Equal(t, tt.wantEvents, rec.events)
			assert.Nil(t, rec.done)
		})
	}
}

func TestStreamAnswer_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "maintenance"})
	})

	err := client.StreamAnswer(context.Background(), driven.AnswerRequest{Question: "q"}, domain.StreamHandler{})

	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusServiceUnavailable, be.StatusCode)
	assert.Equal(t, "maintenance", be.Message)
}

func TestStreamAnswer_IgnoresClientTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = fmt.Fprint(w, "event: chunk\ndata: {\"text\":\"a\"}\n\n")
		flusher.Flush()
		time.Sleep(150 * time.Millisecond)
		_, _ = fmt.Fprint(w, "event: complete\ndata: {\"answer\":\"a\"}\n\n")
	})
	WithTimeout(50 * time.Millisecond)(client)
	rec := &recorder{}

	err := client.StreamAnswer(context.Background(), driven.AnswerRequest{Question: "q"}, rec.handler())

	require.NoError(t, err)
	assert.Equal(t, []string{"chunk", "complete"}, rec.events)
}

func TestStreamAnswer_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		flusher := w.(http.Flusher)
		_, _ = fmt.Fprint(w, "event: chunk\ndata: {\"text\":\"a\"}\n\n")
		flusher.Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	err := client.StreamAnswer(ctx, driven.AnswerRequest{Question: "q"}, domain.StreamHandler{
		OnChunk: func(string) { cancel() },
	})

	assert.ErrorIs(t, err, context.Canceled)
}
