package backend

import (
	"context"
	"net/http"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

// Backend paths
const (
	pathSummarize       = "/api/guidelines/summarize"
	pathFollowup        = "/api/guidelines/followup"
	pathGuidelineSearch = "/api/guidelines/search"
	pathDrugInfo        = "/api/drugs/info"
	pathDrugLibrary     = "/api/drugs/library"
	pathDrugEnhanced    = "/api/drugs/enhanced-search"
	pathAnswerStream    = "/api/assistant/stream"
)

// Summarize summarizes one guideline
func (c *Client) Summarize(ctx context.Context, req domain.SummarizeRequest) (*driven.SummaryPayload, error) {
	var out driven.SummaryPayload
	if err := c.doJSON(ctx, "summarize", http.MethodPost, pathSummarize, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Followup answers a question about a summarized guideline
func (c *Client) Followup(ctx context.Context, req domain.FollowupRequest) (*driven.FollowupPayload, error) {
	body := struct {
		Title           string `json:"title"`
		GuidelinesIndex string `json:"guidelines_index"`
		Question        string `json:"question"`
	}{req.Title, req.GuidelinesIndex, req.Question}

	var out driven.FollowupPayload
	if err := c.doJSON(ctx, "followup", http.MethodPost, pathFollowup, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search searches one guideline database. The backend names the database
// field "country" and answers with a bare array of hits.
func (c *Client) Search(ctx context.Context, query, database string) ([]domain.GuidelineSearchResult, error) {
	body := map[string]string{
		"query":   query,
		"country": database,
	}

	var out []domain.GuidelineSearchResult
	if err := c.doJSON(ctx, "guideline_search", http.MethodPost, pathGuidelineSearch, body, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.GuidelineSearchResult{}
	}
	return out, nil
}
