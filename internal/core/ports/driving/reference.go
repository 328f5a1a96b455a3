package driving

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// ReferenceService drives the reference panels of signed-in users
type ReferenceService interface {
	// OpenPanel opens a panel over a cached summary
	OpenPanel(ctx context.Context, userID string, req domain.OpenPanelRequest) (domain.PanelSnapshot, error)

	// Click resolves a citation occurrence in a panel
	Click(ctx context.Context, userID, panelID, number string, index int) (domain.PanelSnapshot, error)

	// ClickElement resolves a click given the clicked element's dataset.
	// The boolean is false when the element is not a live citation marker.
	ClickElement(ctx context.Context, userID, panelID string, dataset map[string]string) (domain.PanelSnapshot, bool, error)

	// GetPanel returns the current panel state
	GetPanel(ctx context.Context, userID, panelID string) (domain.PanelSnapshot, error)

	// ClosePanel tears a panel down
	ClosePanel(ctx context.Context, userID, panelID string) error

	// CloseAll tears down every panel of a user
	CloseAll(ctx context.Context, userID string) int
}
