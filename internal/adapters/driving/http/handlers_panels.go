package http

import (
	"net/http"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// handleOpenPanel godoc
// @Summary      Open a reference panel
// @Description  Opens a panel over a cached summary; the panel starts idle
// @Tags         Panels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.OpenPanelRequest  true  "Summary and panel kind"
// @Success      201      {object}  domain.PanelSnapshot
// @Failure      404      {object}  ErrorResponse  "Summary not found or expired"
// @Router       /panels [post]
func (s *Server) handleOpenPanel(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	var req domain.OpenPanelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snap, err := s.referenceService.OpenPanel(r.Context(), authCtx.UserID, req)
	if err != nil {
		s.writeServiceError(w, err, "failed to open panel")
		return
	}

	writeJSON(w, http.StatusCreated, snap)
}

// handleGetPanel godoc
// @Summary      Get panel state
// @Tags         Panels
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Panel ID"
// @Success      200  {object}  domain.PanelSnapshot
// @Router       /panels/{id} [get]
func (s *Server) handleGetPanel(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	snap, err := s.referenceService.GetPanel(r.Context(), authCtx.UserID, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err, "failed to load panel")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// handlePanelClick godoc
// @Summary      Click a citation in a panel
// @Description  Accepts an explicit occurrence or the dataset of the clicked element. Clicking the active occurrence again clears it. Elements that are not live citation markers leave the panel unchanged.
// @Tags         Panels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Panel ID"
// @Param        request  body      domain.PanelClickRequest  true  "Clicked occurrence"
// @Success      200      {object}  domain.PanelSnapshot
// @Failure      410      {object}  ErrorResponse  "Panel closed"
// @Router       /panels/{id}/click [post]
func (s *Server) handlePanelClick(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	panelID := r.PathValue("id")
	var req domain.PanelClickRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		snap domain.PanelSnapshot
		err  error
	)
	if req.Dataset != nil {
		snap, _, err = s.referenceService.ClickElement(r.Context(), authCtx.UserID, panelID, req.Dataset)
	} else {
		if req.Number == "" || req.Index < 0 {
			writeError(w, http.StatusBadRequest, "number and a non-negative index are required")
			return
		}
		snap, err = s.referenceService.Click(r.Context(), authCtx.UserID, panelID, req.Number, req.Index)
	}
	if err != nil {
		s.writeServiceError(w, err, "failed to resolve reference")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// handleClosePanel godoc
// @Summary      Close a panel
// @Tags         Panels
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Panel ID"
// @Success      200  {object}  StatusResponse
// @Router       /panels/{id} [delete]
func (s *Server) handleClosePanel(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	if err := s.referenceService.ClosePanel(r.Context(), authCtx.UserID, r.PathValue("id")); err != nil {
		s.writeServiceError(w, err, "failed to close panel")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
