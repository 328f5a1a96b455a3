package services

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

func TestNavigationService_Navigate(t *testing.T) {
	svc := NewNavigationService()
	signedIn := &domain.AuthContext{UserID: "user-1"}

	tests := []struct {
		name     string
		authCtx  *domain.AuthContext
		citation domain.Citation
		wantKind domain.NavigationKind
		wantAuth bool
		wantErr  error
	}{
		{
			name:     "guideline signed in",
			authCtx:  signedIn,
			citation: domain.Citation{Title: "NG136", SourceType: domain.SourceGuidelines, GuidelinesIndex: "42"},
			wantKind: domain.NavigateGuideline,
		},
		{
			name:     "drug signed in",
			authCtx:  signedIn,
			citation: domain.Citation{Title: "Amoxicillin", SourceType: domain.SourceDrug},
			wantKind: domain.NavigateDrug,
		},
		{
			name:     "internet reference anonymous",
			citation: domain.Citation{Title: "Trial", URL: "https://example.org/trial", SourceType: domain.SourceInternet},
			wantKind: domain.NavigateReference,
		},
		{
			name:     "guideline anonymous",
			citation: domain.Citation{Title: "NG136", SourceType: domain.SourceGuidelines},
			wantAuth: true,
		},
		{
			name:     "drug anonymous",
			citation: domain.Citation{Title: "Amoxicillin", SourceType: domain.SourceDrug},
			wantAuth: true,
		},
		{
			name:     "guideline without title",
			authCtx:  signedIn,
			citation: domain.Citation{SourceType: domain.SourceGuidelines},
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := svc.Navigate(context.Background(), tt.authCtx, tt.citation)

			if tt.wantAuth {
				var authErr *domain.AuthRequiredError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthRequiredError, got %v", err)
				}
				if authErr.Redirect != domain.LoginPath || !authErr.ClosePanel {
					t.Errorf("expected redirect to %s with panel close, got %+v", domain.LoginPath, authErr)
				}
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Error("expected error to match ErrUnauthorized")
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, target.Kind)
			}
		})
	}
}

func TestNavigationService_DrugTargetName(t *testing.T) {
	target, err := NewNavigationService().Navigate(context.Background(), &domain.AuthContext{UserID: "u"},
		domain.Citation{Title: " Metformin ", SourceType: domain.SourceDrug})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.DrugName != "Metformin" {
		t.Errorf("expected drug name Metformin, got %q", target.DrugName)
	}
}
