package http

import (
	"net/http"
	"strings"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// countryFor returns the explicit country, or the signed-in user's
// onboarding country. An empty result selects the fallback database.
func (s *Server) countryFor(r *http.Request, explicit string) string {
	if c := strings.TrimSpace(explicit); c != "" {
		return c
	}
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil || s.userService == nil {
		return ""
	}
	user, err := s.userService.Get(r.Context(), authCtx.UserID)
	if err != nil {
		return ""
	}
	return user.Profile.Country
}

// Guideline endpoints

// handleSummarize godoc
// @Summary      Summarize a guideline
// @Description  Fetches, renders and caches a guideline summary. The id in the response opens reference panels.
// @Tags         Guidelines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.SummarizeRequest  true  "Guideline"
// @Success      200      {object}  domain.GuidelineSummary
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      502      {object}  ErrorResponse  "Backend unavailable"
// @Router       /guidelines/summarize [post]
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	var req domain.SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := s.guidelineService.Summarize(r.Context(), authCtx.UserID, req)
	if err != nil {
		s.writeServiceError(w, err, "failed to summarize guideline")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleFollowup godoc
// @Summary      Ask a follow-up question
// @Tags         Guidelines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.FollowupRequest  true  "Question"
// @Success      200      {object}  domain.FollowupAnswer
// @Router       /guidelines/followup [post]
func (s *Server) handleFollowup(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	var req domain.FollowupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	answer, err := s.guidelineService.Followup(r.Context(), authCtx.UserID, req)
	if err != nil {
		s.writeServiceError(w, err, "failed to answer follow-up")
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// handleGuidelineSearch godoc
// @Summary      Search guidelines
// @Description  Searches the country's database, retrying once against the fallback database
// @Tags         Guidelines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.GuidelineSearchRequest  true  "Query"
// @Success      200      {object}  domain.GuidelineSearchResponse
// @Router       /guidelines/search [post]
func (s *Server) handleGuidelineSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.GuidelineSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Country = s.countryFor(r, req.Country)

	resp, err := s.guidelineService.Search(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err, "guideline search failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetSummary godoc
// @Summary      Get a cached summary
// @Tags         Guidelines
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Summary ID"
// @Success      200  {object}  domain.GuidelineSummary
// @Failure      404  {object}  ErrorResponse  "Not found or expired"
// @Router       /guidelines/summaries/{id} [get]
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	summary, err := s.guidelineService.GetSummary(r.Context(), authCtx.UserID, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err, "failed to load summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Drug endpoints

// handleDrugLibrary godoc
// @Summary      Browse the drug library
// @Tags         Drugs
// @Produce      json
// @Security     BearerAuth
// @Param        letter   query     string  false  "First letter"
// @Param        country  query     string  false  "Country code"
// @Param        limit    query     int     false  "Page size"
// @Param        offset   query     int     false  "Offset"
// @Success      200      {array}   domain.DrugLibraryEntry
// @Router       /drugs [get]
func (s *Server) handleDrugLibrary(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	q := r.URL.Query()
	entries, err := s.drugService.GetDrugLibrary(r.Context(), s.countryFor(r, q.Get("country")), domain.DrugLibraryQuery{
		Letter:   q.Get("letter"),
		Database: q.Get("database"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		s.writeServiceError(w, err, "failed to list drugs")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleDrugInfo godoc
// @Summary      Get a drug monograph
// @Tags         Drugs
// @Produce      json
// @Security     BearerAuth
// @Param        name     path      string  true   "Drug name"
// @Param        country  query     string  false  "Country code"
// @Success      200      {object}  domain.DrugInfo
// @Failure      404      {object}  ErrorResponse  "Unknown drug"
// @Router       /drugs/{name} [get]
func (s *Server) handleDrugInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.drugService.GetDrugInfo(r.Context(), r.PathValue("name"), s.countryFor(r, r.URL.Query().Get("country")))
	if err != nil {
		s.writeServiceError(w, err, "failed to load drug")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

type drugSearchRequest struct {
	Query   string `json:"query" example:"augmentin"`
	Country string `json:"country,omitempty" example:"gb"`
}

// handleDrugSearch godoc
// @Summary      Enhanced drug search
// @Description  Resolves a query to a direct match or brand options
// @Tags         Drugs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      drugSearchRequest  true  "Query"
// @Success      200      {object}  domain.DrugSearchResult
// @Router       /drugs/search [post]
func (s *Server) handleDrugSearch(w http.ResponseWriter, r *http.Request) {
	var req drugSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.drugService.EnhancedSearch(r.Context(), req.Query, s.countryFor(r, req.Country))
	if err != nil {
		s.writeServiceError(w, err, "drug search failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Citation navigation

// handleNavigate godoc
// @Summary      Resolve a citation click
// @Description  Guideline and drug citations need a session; without one the response is 401 with redirect and close_panel.
// @Tags         Citations
// @Accept       json
// @Produce      json
// @Param        request  body      domain.Citation  true  "Citation metadata"
// @Success      200      {object}  domain.NavigationTarget
// @Failure      401      {object}  AuthRequiredResponse  "Sign in required"
// @Router       /citations/navigate [post]
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var citation domain.Citation
	if !decodeJSON(w, r, &citation) {
		return
	}

	target, err := s.navigationService.Navigate(r.Context(), GetAuthContext(r.Context()), citation)
	if err != nil {
		s.writeServiceError(w, err, "failed to resolve citation")
		return
	}

	writeJSON(w, http.StatusOK, target)
}
