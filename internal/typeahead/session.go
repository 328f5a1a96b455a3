package typeahead

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SearchFunc runs one search for a settled query
type SearchFunc func(ctx context.Context, query string) (any, error)

// Result is delivered for the latest query of a live session only
type Result struct {
	Seq   uint64
	Query string
	Data  any
	Err   error
}

const queryKey = "query"

// Session debounces the queries of one client connection.
//
// Each Submit supersedes the previous query. A search result is delivered
// only if its query is still the latest one and the session has not been
// closed; anything else is dropped. In-flight searches are not aborted
// by Close, but their results are ignored.
type Session struct {
	mu        sync.Mutex
	ctx       context.Context
	debouncer *Debouncer
	search    SearchFunc
	deliver   func(Result)
	logger    *zap.Logger

	latest  uint64
	closed  bool
	dropped int
}

// NewSession creates a session. deliver is never called after Close returns.
func NewSession(ctx context.Context, delay time.Duration, search SearchFunc, deliver func(Result), logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ctx:       ctx,
		debouncer: NewDebouncer(delay),
		search:    search,
		deliver:   deliver,
		logger:    logger,
	}
}

// Submit records a new query. Blank queries cancel the pending search
// without starting a new one.
func (s *Session) Submit(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.latest++
	seq := s.latest
	s.mu.Unlock()

	if query == "" {
		s.debouncer.Cancel(queryKey)
		return
	}

	s.debouncer.Trigger(queryKey, func() {
		s.run(seq, query)
	})
}

func (s *Session) run(seq uint64, query string) {
	if !s.current(seq) {
		return
	}

	data, err := s.search(s.ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.latest {
		s.dropped++
		s.logger.Debug("dropping stale typeahead result",
			zap.String("query", query),
			zap.Uint64("seq", seq),
			zap.Bool("closed", s.closed))
		return
	}
	s.deliver(Result{Seq: seq, Query: query, Data: data, Err: err})
}

func (s *Session) current(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && seq == s.latest
}

// Dropped returns how many completed searches were discarded
func (s *Session) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close stops pending timers and marks the session torn down
func (s *Session) Close() {
	s.debouncer.Stop()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
