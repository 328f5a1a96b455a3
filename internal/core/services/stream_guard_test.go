package services

import (
	"sync"
	"testing"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

func TestGuardStream_DropsAfterCompletion(t *testing.T) {
	var (
		chunks      []string
		statuses    int
		completions int
		dropped     []domain.StreamEventType
	)
	h := guardStream(domain.StreamHandler{
		OnChunk:    func(text string) { chunks = append(chunks, text) },
		OnStatus:   func(domain.StreamStatus) { statuses++ },
		OnComplete: func(domain.StreamCompletion) { completions++ },
	}, func(kind domain.StreamEventType) { dropped = append(dropped, kind) })

	h.OnStatus(domain.StreamStatus{Stage: "searching"})
	h.OnChunk("Hello ")
	h.OnChunk("world")
	h.OnComplete(domain.StreamCompletion{Answer: "Hello world"})
	h.OnChunk("late")
	h.OnStatus(domain.StreamStatus{Stage: "late"})
	h.OnComplete(domain.StreamCompletion{Answer: "again"})

	if len(chunks) != 2 || chunks[1] != "world" {
		t.Errorf("expected 2 chunks before completion, got %v", chunks)
	}
	if statuses != 1 {
		t.Errorf("expected 1 status, got %d", statuses)
	}
	if completions != 1 {
		t.Errorf("expected exactly one completion, got %d", completions)
	}
	want := []domain.StreamEventType{domain.StreamEventChunk, domain.StreamEventStatus, domain.StreamEventComplete}
	if len(dropped) != len(want) {
		t.Fatalf("expected dropped %v, got %v", want, dropped)
	}
	for i := range want {
		if dropped[i] != want[i] {
			t.Errorf("dropped[%d] = %s, want %s", i, dropped[i], want[i])
		}
	}
}

func TestGuardStream_NilHooks(t *testing.T) {
	h := guardStream(domain.StreamHandler{}, nil)
	h.OnChunk("x")
	h.OnStatus(domain.StreamStatus{})
	h.OnComplete(domain.StreamCompletion{})
	h.OnChunk("y")
}

func TestGuardStream_ConcurrentCompletion(t *testing.T) {
	var (
		mu          sync.Mutex
		completions int
	)
	h := guardStream(domain.StreamHandler{
		OnComplete: func(domain.StreamCompletion) {
			mu.Lock()
			completions++
			mu.Unlock()
		},
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnChunk("c")
			h.OnComplete(domain.StreamCompletion{})
		}()
	}
	wg.Wait()

	if completions != 1 {
		t.Errorf("expected one completion, got %d", completions)
	}
}
