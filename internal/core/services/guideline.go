package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/citations"
	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
	"github.com/custodia-labs/clinref/internal/core/ports/driving"
	"github.com/custodia-labs/clinref/internal/metrics"
)

// Ensure guidelineService implements GuidelineService
var _ driving.GuidelineService = (*guidelineService)(nil)

type guidelineService struct {
	api      driven.GuidelineAPI
	cache    driven.SummaryCache
	catalog  driven.DatabaseCatalog
	pipeline *citations.Pipeline
	logger   *zap.Logger
	now      func() time.Time
}

// NewGuidelineService creates a new GuidelineService
func NewGuidelineService(
	api driven.GuidelineAPI,
	cache driven.SummaryCache,
	catalog driven.DatabaseCatalog,
	pipeline *citations.Pipeline,
	logger *zap.Logger,
) driving.GuidelineService {
	if pipeline == nil {
		pipeline = citations.NewPipeline()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &guidelineService{
		api:      api,
		cache:    cache,
		catalog:  catalog,
		pipeline: pipeline,
		logger:   logger,
		now:      time.Now,
	}
}

// Summarize fetches a summary, renders it with a fresh occurrence counter
// and caches the document unit under a new summary ID.
func (s *guidelineService) Summarize(ctx context.Context, ownerID string, req domain.SummarizeRequest) (*domain.GuidelineSummary, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.GuidelinesIndex = strings.TrimSpace(req.GuidelinesIndex)
	if req.Title == "" || req.GuidelinesIndex == "" {
		return nil, domain.ErrInvalidInput
	}

	payload, err := s.api.Summarize(ctx, req)
	if err != nil {
		return nil, err
	}

	rendered, err := s.pipeline.Render(payload.Summary, payload.Citations, citations.NewOccurrenceCounter())
	if err != nil {
		return nil, err
	}

	title := payload.Title
	if title == "" {
		title = req.Title
	}
	summary := &domain.GuidelineSummary{
		ID:              uuid.NewString(),
		Title:           title,
		GuidelinesIndex: req.GuidelinesIndex,
		Summary:         payload.Summary,
		HTML:            rendered.HTML,
		Sources:         payload.Sources,
		PageReferences:  payload.PageReferences,
		Citations:       payload.Citations,
		Occurrences:     rendered.Occurrences,
		OwnerID:         ownerID,
		CreatedAt:       s.now(),
	}
	s.warnOccurrenceMismatch(summary.ID, rendered.Occurrences, payload.PageReferences)

	if err := s.cache.Put(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Followup answers a question about a guideline. When SummaryID names a
// cached summary its title and index fill in missing request fields.
func (s *guidelineService) Followup(ctx context.Context, ownerID string, req domain.FollowupRequest) (*domain.FollowupAnswer, error) {
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return nil, domain.ErrInvalidInput
	}

	if req.SummaryID != "" {
		parent, err := s.GetSummary(ctx, ownerID, req.SummaryID)
		if err != nil {
			return nil, err
		}
		if req.Title == "" {
			req.Title = parent.Title
		}
		if req.GuidelinesIndex == "" {
			req.GuidelinesIndex = parent.GuidelinesIndex
		}
	}
	if req.Title == "" || req.GuidelinesIndex == "" {
		return nil, domain.ErrInvalidInput
	}

	payload, err := s.api.Followup(ctx, req)
	if err != nil {
		return nil, err
	}

	rendered, err := s.pipeline.Render(payload.Answer, payload.Citations, citations.NewOccurrenceCounter())
	if err != nil {
		return nil, err
	}

	unit := &domain.GuidelineSummary{
		ID:              uuid.NewString(),
		Title:           req.Title,
		GuidelinesIndex: req.GuidelinesIndex,
		Summary:         payload.Answer,
		HTML:            rendered.HTML,
		Sources:         payload.Sources,
		PageReferences:  payload.PageReferences,
		Citations:       payload.Citations,
		Occurrences:     rendered.Occurrences,
		OwnerID:         ownerID,
		CreatedAt:       s.now(),
	}
	s.warnOccurrenceMismatch(unit.ID, rendered.Occurrences, payload.PageReferences)

	if err := s.cache.Put(ctx, unit); err != nil {
		return nil, err
	}

	return &domain.FollowupAnswer{
		SummaryID:      unit.ID,
		Question:       req.Question,
		Answer:         payload.Answer,
		HTML:           rendered.HTML,
		Sources:        payload.Sources,
		PageReferences: payload.PageReferences,
		Occurrences:    rendered.Occurrences,
	}, nil
}

// Search searches the guideline database of req.Country. A retryable
// failure is retried once against the fallback database.
func (s *guidelineService) Search(ctx context.Context, req domain.GuidelineSearchRequest) (*domain.GuidelineSearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrInvalidInput
	}

	database := req.Database
	if database == "" {
		database = s.catalog.GuidelineDatabase(req.Country)
	}

	var fellBack bool
	results, err := withFallback(ctx, "guideline_search", database, s.catalog.FallbackDatabase(), s.logger,
		func(ctx context.Context, db string) ([]domain.GuidelineSearchResult, error) {
			if db != database {
				fellBack = true
			}
			return s.api.Search(ctx, query, db)
		})
	if err != nil {
		return nil, err
	}

	served := database
	if fellBack {
		served = s.catalog.FallbackDatabase()
	}
	if results == nil {
		results = []domain.GuidelineSearchResult{}
	}
	return &domain.GuidelineSearchResponse{
		Query:      query,
		Database:   served,
		FellBack:   fellBack,
		Results:    results,
		TotalCount: len(results),
	}, nil
}

// GetSummary returns a cached summary. Summaries of other users are
// reported as not found.
func (s *guidelineService) GetSummary(ctx context.Context, ownerID, id string) (*domain.GuidelineSummary, error) {
	summary, err := s.cache.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return summary, nil
}

// warnOccurrenceMismatch logs citation numbers rendered more often than the
// backend supplied page references for. Clicks on the extra occurrences
// degrade to the full source text.
func (s *guidelineService) warnOccurrenceMismatch(summaryID string, occurrences map[string]int, refs domain.PageReference) {
	for number, count := range occurrences {
		if supplied := len(refs[number]); supplied < count {
			s.logger.Warn("fewer page references than rendered citation occurrences",
				zap.String("summary_id", summaryID),
				zap.String("citation", number),
				zap.Int("rendered", count),
				zap.Int("supplied", supplied))
		}
	}
}

// withFallback runs call against database and, when that fails with a
// retryable backend error, once more against fallback.
func withFallback[T any](
	ctx context.Context,
	operation, database, fallback string,
	logger *zap.Logger,
	call func(ctx context.Context, db string) (T, error),
) (T, error) {
	result, err := call(ctx, database)
	if err == nil || database == fallback || !retryable(err) {
		return result, err
	}

	logger.Warn("retrying against fallback database",
		zap.String("operation", operation),
		zap.String("database", database),
		zap.String("fallback", fallback),
		zap.Error(err))

	result, err = call(ctx, fallback)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.FallbackRetries.WithLabelValues(operation, outcome).Inc()
	return result, err
}

func retryable(err error) bool {
	var be *domain.BackendError
	return errors.As(err, &be) && be.Retryable()
}
