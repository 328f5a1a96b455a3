package services

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/citations"
	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
	"github.com/custodia-labs/clinref/internal/core/ports/driving"
)

const (
	defaultLibraryLimit = 50
	maxLibraryLimit     = 200
)

// Ensure drugService implements DrugService
var _ driving.DrugService = (*drugService)(nil)

type drugService struct {
	api      driven.DrugAPI
	catalog  driven.DatabaseCatalog
	pipeline *citations.Pipeline
	logger   *zap.Logger
}

// NewDrugService creates a new DrugService
func NewDrugService(api driven.DrugAPI, catalog driven.DatabaseCatalog, pipeline *citations.Pipeline, logger *zap.Logger) driving.DrugService {
	if pipeline == nil {
		pipeline = citations.NewPipeline()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &drugService{
		api:      api,
		catalog:  catalog,
		pipeline: pipeline,
		logger:   logger,
	}
}

// GetDrugInfo returns a monograph with rendered HTML
func (s *drugService) GetDrugInfo(ctx context.Context, name, country string) (*domain.DrugInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	info, err := withFallback(ctx, "drug_info", s.catalog.DrugDatabase(country), s.catalog.FallbackDatabase(), s.logger,
		func(ctx context.Context, db string) (*domain.DrugInfo, error) {
			return s.api.GetDrugInfo(ctx, name, db)
		})
	if err != nil {
		return nil, err
	}
	if err := s.render(info); err != nil {
		return nil, err
	}
	return info, nil
}

// GetDrugLibrary lists the library of the country's drug database
func (s *drugService) GetDrugLibrary(ctx context.Context, country string, query domain.DrugLibraryQuery) ([]domain.DrugLibraryEntry, error) {
	query.Letter = strings.TrimSpace(query.Letter)
	if query.Letter != "" {
		r := []rune(query.Letter)
		if len(r) != 1 || !unicode.IsLetter(r[0]) {
			return nil, domain.ErrInvalidInput
		}
		query.Letter = strings.ToUpper(query.Letter)
	}
	if query.Offset < 0 {
		return nil, domain.ErrInvalidInput
	}
	if query.Limit <= 0 {
		query.Limit = defaultLibraryLimit
	}
	if query.Limit > maxLibraryLimit {
		query.Limit = maxLibraryLimit
	}
	if query.Database == "" {
		query.Database = s.catalog.DrugDatabase(country)
	}

	entries, err := s.api.GetDrugLibrary(ctx, query)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.DrugLibraryEntry{}
	}
	return entries, nil
}

// EnhancedSearch resolves a free-text query to a drug or brand options
func (s *drugService) EnhancedSearch(ctx context.Context, query, country string) (*domain.DrugSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidInput
	}

	result, err := withFallback(ctx, "drug_search", s.catalog.DrugDatabase(country), s.catalog.FallbackDatabase(), s.logger,
		func(ctx context.Context, db string) (*domain.DrugSearchResult, error) {
			return s.api.EnhancedSearchDrugs(ctx, query, db)
		})
	if err != nil {
		return nil, err
	}

	result.Query = query
	if result.BrandOptions == nil {
		result.BrandOptions = []domain.BrandOption{}
	}
	if result.DirectMatch != nil {
		if err := s.render(result.DirectMatch); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *drugService) render(info *domain.DrugInfo) error {
	if info.MarkdownContent == "" {
		return nil
	}
	html, err := s.pipeline.RenderMarkdown(info.MarkdownContent)
	if err != nil {
		return err
	}
	info.HTML = html
	return nil
}
