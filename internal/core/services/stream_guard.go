package services

import (
	"sync"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// guardStream wraps h so that the first completion closes the stream.
// Chunks, statuses and repeated completions arriving after it are passed
// to onDrop instead of h.
func guardStream(h domain.StreamHandler, onDrop func(kind domain.StreamEventType)) domain.StreamHandler {
	var (
		mu   sync.Mutex
		done bool
	)
	drop := func(kind domain.StreamEventType) {
		if onDrop != nil {
			onDrop(kind)
		}
	}

	return domain.StreamHandler{
		OnChunk: func(text string) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				drop(domain.StreamEventChunk)
				return
			}
			if h.OnChunk != nil {
				h.OnChunk(text)
			}
		},
		OnStatus: func(status domain.StreamStatus) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				drop(domain.StreamEventStatus)
				return
			}
			if h.OnStatus != nil {
				h.OnStatus(status)
			}
		},
		OnComplete: func(c domain.StreamCompletion) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				drop(domain.StreamEventComplete)
				return
			}
			done = true
			if h.OnComplete != nil {
				h.OnComplete(c)
			}
		},
	}
}
