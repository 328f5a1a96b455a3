package panel

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/metrics"
)

// Registry holds the open panels of all users
type Registry struct {
	mu     sync.RWMutex
	panels map[string]*Panel
	logger *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		panels: make(map[string]*Panel),
		logger: logger,
	}
}

// Open creates a panel for ownerID bound to doc
func (r *Registry) Open(ownerID, summaryID string, kind domain.PanelKind, doc Document) (*Panel, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidInput
	}

	p := New(uuid.NewString(), ownerID, kind)
	if err := p.Open(summaryID, doc); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.panels[p.ID()] = p
	r.mu.Unlock()
	metrics.PanelsActive.Inc()

	r.logger.Debug("panel opened",
		zap.String("panel_id", p.ID()),
		zap.String("kind", string(kind)),
		zap.String("summary_id", summaryID))
	return p, nil
}

// Get returns the panel if it exists and belongs to ownerID
func (r *Registry) Get(ownerID, id string) (*Panel, error) {
	r.mu.RLock()
	p, ok := r.panels[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.OwnerID() != ownerID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// Close tears down and forgets a panel
func (r *Registry) Close(ownerID, id string) error {
	r.mu.Lock()
	p, ok := r.panels[id]
	if !ok {
		r.mu.Unlock()
		return domain.ErrNotFound
	}
	if p.OwnerID() != ownerID {
		r.mu.Unlock()
		return domain.ErrForbidden
	}
	delete(r.panels, id)
	r.mu.Unlock()

	p.Close()
	metrics.PanelsActive.Dec()
	return nil
}

// CloseOwner closes every panel of ownerID and returns how many were closed
func (r *Registry) CloseOwner(ownerID string) int {
	return r.closeWhere(func(p *Panel) bool { return p.OwnerID() == ownerID })
}

// Sweep closes panels that have not changed for longer than maxIdle
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	n := r.closeWhere(func(p *Panel) bool { return p.lastUpdated().Before(cutoff) })
	if n > 0 {
		r.logger.Info("swept idle panels", zap.Int("count", n))
	}
	return n
}

// Len returns the number of open panels
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.panels)
}

func (r *Registry) closeWhere(match func(*Panel) bool) int {
	r.mu.Lock()
	var closed []*Panel
	for id, p := range r.panels {
		if match(p) {
			delete(r.panels, id)
			closed = append(closed, p)
		}
	}
	r.mu.Unlock()

	for _, p := range closed {
		p.Close()
		metrics.PanelsActive.Dec()
	}
	return len(closed)
}
