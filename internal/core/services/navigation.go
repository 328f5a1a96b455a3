package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driving"
)

// Ensure navigationService implements NavigationService
var _ driving.NavigationService = (*navigationService)(nil)

type navigationService struct{}

// NewNavigationService creates a new NavigationService
func NewNavigationService() driving.NavigationService {
	return &navigationService{}
}

// Navigate maps a citation's source type to the panel it opens. Guideline
// and drug panels require a signed-in user; anonymous callers get an
// AuthRequiredError asking them to close the panel and sign in.
func (s *navigationService) Navigate(ctx context.Context, authCtx *domain.AuthContext, c domain.Citation) (*domain.NavigationTarget, error) {
	title := strings.TrimSpace(c.Title)

	var target domain.NavigationTarget
	switch c.SourceType {
	case domain.SourceGuidelines:
		if title == "" {
			return nil, domain.ErrInvalidInput
		}
		target = domain.NavigationTarget{
			Kind:            domain.NavigateGuideline,
			Title:           title,
			GuidelinesIndex: c.GuidelinesIndex,
		}
	case domain.SourceDrug:
		if title == "" {
			return nil, domain.ErrInvalidInput
		}
		target = domain.NavigationTarget{
			Kind:     domain.NavigateDrug,
			Title:    title,
			DrugName: title,
		}
	default:
		target = domain.NavigationTarget{
			Kind:  domain.NavigateReference,
			Title: title,
			URL:   c.URL,
		}
	}

	if target.RequiresAuth() && authCtx == nil {
		return nil, domain.NewAuthRequiredError(target.Kind)
	}
	return &target, nil
}
