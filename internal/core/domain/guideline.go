package domain

import "time"

// SummarizeRequest asks the backend to summarize one guideline
type SummarizeRequest struct {
	Title           string `json:"title"`
	GuidelinesIndex string `json:"guidelines_index"`
}

// FollowupRequest asks a question about a summarized guideline
type FollowupRequest struct {
	SummaryID       string `json:"summary_id,omitempty"`
	Title           string `json:"title"`
	GuidelinesIndex string `json:"guidelines_index"`
	Question        string `json:"question"`
}

// GuidelineSearchRequest searches the guideline database for a country
type GuidelineSearchRequest struct {
	Query    string `json:"query"`
	Country  string `json:"country"`
	Database string `json:"database,omitempty"`
}

// GuidelineSummary is a summarized guideline together with the
// SourceDocument/PageReference unit that arrived with it.
type GuidelineSummary struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	GuidelinesIndex string         `json:"guidelines_index"`
	Summary         string         `json:"summary"`
	HTML            string         `json:"html"`
	Sources         SourceDocument `json:"sources"`
	PageReferences  PageReference  `json:"page_references"`
	Citations       CitationMap    `json:"citations,omitempty"`
	Occurrences     map[string]int `json:"occurrences,omitempty"`
	OwnerID         string         `json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
}

// FollowupAnswer is the backend answer to a follow-up question. It is
// cached as its own summary unit so its citations can be resolved.
type FollowupAnswer struct {
	SummaryID      string         `json:"summary_id"`
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	HTML           string         `json:"html"`
	Sources        SourceDocument `json:"sources"`
	PageReferences PageReference  `json:"page_references"`
	Occurrences    map[string]int `json:"occurrences,omitempty"`
}

// GuidelineSearchResult is one hit from a guideline search
type GuidelineSearchResult struct {
	Title           string `json:"title"`
	GuidelinesIndex string `json:"guidelines_index"`
	Summary         string `json:"summary,omitempty"`
	Organization    string `json:"organization,omitempty"`
	Year            string `json:"year,omitempty"`
	URL             string `json:"url,omitempty"`
}

// GuidelineSearchResponse wraps search hits with the database that served them
type GuidelineSearchResponse struct {
	Query      string                  `json:"query"`
	Database   string                  `json:"database"`
	FellBack   bool                    `json:"fell_back"`
	Results    []GuidelineSearchResult `json:"results"`
	TotalCount int                     `json:"total_count"`
}
