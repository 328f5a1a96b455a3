package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
	"github.com/custodia-labs/clinref/internal/metrics"
)

const (
	streamOp = "stream_answer"

	scannerBufBytes = 64 * 1024
	scannerMaxBytes = 4 * 1024 * 1024
)

// errStreamEnd stops the read loop after a terminal event
var errStreamEnd = errors.New("stream ended")

// StreamAnswer posts the question and consumes the backend's event stream,
// calling the handler hooks in arrival order. It returns nil once a
// complete event has been delivered. An error event, or a stream that
// closes without completing, is returned as a BackendError.
func (c *Client) StreamAnswer(ctx context.Context, areq driven.AnswerRequest, handler domain.StreamHandler) error {
	start := time.Now()
	err := c.streamAnswer(ctx, areq, handler)
	metrics.RecordBackendRequest(streamOp, outcome(err), time.Since(start))
	if err != nil {
		c.logger.Debug("answer stream failed", zap.Error(err))
	}
	return err
}

func (c *Client) streamAnswer(ctx context.Context, areq driven.AnswerRequest, handler domain.StreamHandler) error {
	req, err := c.newRequest(ctx, http.MethodPost, pathAnswerStream, areq)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.sendStream(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, scannerBufBytes), scannerMaxBytes)

	var eventType string
	var data []string

	dispatch := func() error {
		if len(data) == 0 {
			eventType = ""
			return nil
		}
		err := c.processEvent(eventType, strings.Join(data, "\n"), handler)
		eventType = ""
		data = data[:0]
		return err
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ":"):
			// Comment or keepalive
			continue
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case line == "":
			if err := dispatch(); err != nil {
				if errors.Is(err, errStreamEnd) {
					return nil
				}
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &domain.BackendError{Operation: streamOp, Message: "read stream: " + err.Error()}
	}

	// Flush an event not followed by a blank line
	if err := dispatch(); err != nil {
		if errors.Is(err, errStreamEnd) {
			return nil
		}
		return err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &domain.BackendError{
		Operation:  streamOp,
		StatusCode: http.StatusBadGateway,
		Message:    "stream closed before completion",
	}
}

// sendStream is send without the client timeout; the context bounds streams.
func (c *Client) sendStream(ctx context.Context, req *http.Request) (*http.Response, error) {
	hc := *c.httpClient
	hc.Timeout = 0
	sc := *c
	sc.httpClient = &hc
	return sc.send(ctx, streamOp, req)
}

type chunkEvent struct {
	Text  string `json:"text"`
	Delta string `json:"delta"`
}

type errorEvent struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// processEvent decodes one event and calls the matching hook. It returns
// errStreamEnd after a complete event.
func (c *Client) processEvent(eventType, data string, handler domain.StreamHandler) error {
	switch domain.StreamEventType(eventType) {
	case domain.StreamEventChunk, "":
		var ev chunkEvent
		text := data
		if json.Unmarshal([]byte(data), &ev) == nil {
			text = ev.Text
			if text == "" {
				text = ev.Delta
			}
		}
		if handler.OnChunk != nil && text != "" {
			handler.OnChunk(text)
		}
		return nil

	case domain.StreamEventStatus:
		var st domain.StreamStatus
		if err := json.Unmarshal([]byte(data), &st); err != nil {
			st = domain.StreamStatus{Stage: strings.TrimSpace(data)}
		}
		if handler.OnStatus != nil {
			handler.OnStatus(st)
		}
		return nil

	case domain.StreamEventComplete:
		var done domain.StreamCompletion
		if err := json.Unmarshal([]byte(data), &done); err != nil {
			return &domain.BackendError{
				Operation:  streamOp,
				StatusCode: http.StatusBadGateway,
				Message:    "decode completion: " + err.Error(),
			}
		}
		if handler.OnComplete != nil {
			handler.OnComplete(done)
		}
		return errStreamEnd

	case domain.StreamEventError:
		var ev errorEvent
		msg := strings.TrimSpace(data)
		if json.Unmarshal([]byte(data), &ev) == nil {
			msg = ev.Error
			if msg == "" {
				msg = ev.Message
			}
		}
		if msg == "" {
			msg = "answer generation failed"
		}
		return &domain.BackendError{
			Operation:  streamOp,
			StatusCode: http.StatusBadGateway,
			Message:    msg,
		}

	default:
		c.logger.Debug("ignoring unknown stream event", zap.String("event", eventType))
		return nil
	}
}
