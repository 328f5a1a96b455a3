package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

var _ driven.AnswerStreamer = (*MockAnswerStreamer)(nil)

// StreamStep is one scripted event of a MockAnswerStreamer
type StreamStep struct {
	Chunk    string
	Status   *domain.StreamStatus
	Complete *domain.StreamCompletion
}

// MockAnswerStreamer replays a scripted stream and then returns Err
type MockAnswerStreamer struct {
	mu       sync.Mutex
	Steps    []StreamStep
	Err      error
	Requests []driven.AnswerRequest
}

func (m *MockAnswerStreamer) StreamAnswer(ctx context.Context, req driven.AnswerRequest, h domain.StreamHandler) error {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	steps := append([]StreamStep(nil), m.Steps...)
	m.mu.Unlock()

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch {
		case step.Complete != nil:
			if h.OnComplete != nil {
				h.OnComplete(*step.Complete)
			}
		case step.Status != nil:
			if h.OnStatus != nil {
				h.OnStatus(*step.Status)
			}
		default:
			if h.OnChunk != nil {
				h.OnChunk(step.Chunk)
			}
		}
	}
	return m.Err
}
