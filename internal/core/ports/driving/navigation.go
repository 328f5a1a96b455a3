package driving

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// NavigationService decides where a citation click leads
type NavigationService interface {
	// Navigate returns the target for a citation. Guideline and drug targets
	// need authCtx; without it the result is a *domain.AuthRequiredError.
	Navigate(ctx context.Context, authCtx *domain.AuthContext, citation domain.Citation) (*domain.NavigationTarget, error)
}
