package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// GetDrugInfo fetches the monograph for one drug.
func (c *Client) GetDrugInfo(ctx context.Context, name, database string) (*domain.DrugInfo, error) {
	q := url.Values{}
	q.Set("name", name)
	if database != "" {
		q.Set("database", database)
	}

	var out domain.DrugInfo
	if err := c.doJSON(ctx, "drug_info", http.MethodGet, pathDrugInfo+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Name == "" {
		out.Name = name
	}
	return &out, nil
}

// GetDrugLibrary lists one page of the drug library
func (c *Client) GetDrugLibrary(ctx context.Context, query domain.DrugLibraryQuery) ([]domain.DrugLibraryEntry, error) {
	q := url.Values{}
	if query.Letter != "" {
		q.Set("letter", query.Letter)
	}
	if query.Database != "" {
		q.Set("database", query.Database)
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		q.Set("offset", strconv.Itoa(query.Offset))
	}

	path := pathDrugLibrary
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Drugs []domain.DrugLibraryEntry `json:"drugs"`
	}
	if err := c.doJSON(ctx, "drug_library", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Drugs == nil {
		out.Drugs = []domain.DrugLibraryEntry{}
	}
	return out.Drugs, nil
}

// EnhancedSearchDrugs resolves a free-text query to a direct match and
// brand-name options.
func (c *Client) EnhancedSearchDrugs(ctx context.Context, query, database string) (*domain.DrugSearchResult, error) {
	body := map[string]string{"query": query}
	if database != "" {
		body["database"] = database
	}

	var out domain.DrugSearchResult
	if err := c.doJSON(ctx, "drug_search", http.MethodPost, pathDrugEnhanced, body, &out); err != nil {
		return nil, err
	}
	if out.Query == "" {
		out.Query = query
	}
	if out.BrandOptions == nil {
		out.BrandOptions = []domain.BrandOption{}
	}
	return &out, nil
}
