package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
	"github.com/custodia-labs/clinref/internal/core/ports/driving"
	"github.com/custodia-labs/clinref/internal/metrics"
	"github.com/custodia-labs/clinref/internal/panel"
)

// Ensure referenceService implements ReferenceService
var _ driving.ReferenceService = (*referenceService)(nil)

type referenceService struct {
	cache    driven.SummaryCache
	registry *panel.Registry
	logger   *zap.Logger
}

// NewReferenceService creates a new ReferenceService
func NewReferenceService(cache driven.SummaryCache, registry *panel.Registry, logger *zap.Logger) driving.ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &referenceService{
		cache:    cache,
		registry: registry,
		logger:   logger,
	}
}

// OpenPanel opens a panel over one of the user's cached summaries
func (s *referenceService) OpenPanel(ctx context.Context, userID string, req domain.OpenPanelRequest) (domain.PanelSnapshot, error) {
	if req.SummaryID == "" || !req.Kind.Valid() {
		return domain.PanelSnapshot{}, domain.ErrInvalidInput
	}

	summary, err := s.cache.Get(ctx, req.SummaryID)
	if err != nil {
		return domain.PanelSnapshot{}, err
	}
	if summary.OwnerID != userID {
		return domain.PanelSnapshot{}, domain.ErrNotFound
	}

	p, err := s.registry.Open(userID, summary.ID, req.Kind, panel.Document{
		Sources:        summary.Sources,
		PageReferences: summary.PageReferences,
		Citations:      summary.Citations,
	})
	if err != nil {
		return domain.PanelSnapshot{}, err
	}
	return p.Snapshot(), nil
}

// Click resolves a citation occurrence in one of the user's panels
func (s *referenceService) Click(ctx context.Context, userID, panelID, number string, index int) (domain.PanelSnapshot, error) {
	p, err := s.registry.Get(userID, panelID)
	if err != nil {
		return domain.PanelSnapshot{}, err
	}

	snap, err := p.Click(number, index)
	if err != nil {
		return domain.PanelSnapshot{}, err
	}
	s.record(panelID, snap)
	return snap, nil
}

// ClickElement resolves a delegated click on a rendered citation element
func (s *referenceService) ClickElement(ctx context.Context, userID, panelID string, dataset map[string]string) (domain.PanelSnapshot, bool, error) {
	p, err := s.registry.Get(userID, panelID)
	if err != nil {
		return domain.PanelSnapshot{}, false, err
	}

	snap, fired, err := p.ClickElement(dataset)
	if err != nil {
		return domain.PanelSnapshot{}, fired, err
	}
	if fired {
		s.record(panelID, snap)
	}
	return snap, fired, nil
}

// GetPanel returns the current state of a panel
func (s *referenceService) GetPanel(ctx context.Context, userID, panelID string) (domain.PanelSnapshot, error) {
	p, err := s.registry.Get(userID, panelID)
	if err != nil {
		return domain.PanelSnapshot{}, err
	}
	return p.Snapshot(), nil
}

// ClosePanel tears a panel down
func (s *referenceService) ClosePanel(ctx context.Context, userID, panelID string) error {
	return s.registry.Close(userID, panelID)
}

// CloseAll tears down every panel of a user
func (s *referenceService) CloseAll(ctx context.Context, userID string) int {
	return s.registry.CloseOwner(userID)
}

func (s *referenceService) record(panelID string, snap domain.PanelSnapshot) {
	outcome := resolveOutcome(snap.Active)
	metrics.LocateResults.WithLabelValues(outcome).Inc()
	if snap.Active != nil && snap.Active.IsError {
		s.logger.Debug("citation resolved with error",
			zap.String("panel_id", panelID),
			zap.String("citation", snap.Active.Number),
			zap.Int("occurrence", snap.Active.Index),
			zap.String("outcome", outcome))
	}
}

func resolveOutcome(active *domain.ActiveReference) string {
	switch {
	case active == nil:
		return "toggled"
	case !active.IsError:
		return string(domain.LocateFound)
	case active.HighlightedRange != nil:
		return string(domain.LocatePartial)
	case active.HasText():
		return string(domain.LocateNotFound)
	default:
		return "no_source"
	}
}
