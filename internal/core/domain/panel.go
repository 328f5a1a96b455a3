package domain

import "time"

// PanelKind names the UI surfaces that show a resolved reference
type PanelKind string

const (
	PanelGuidelineModal    PanelKind = "guideline_modal"
	PanelMobileModal       PanelKind = "mobile_modal"
	PanelReferencesSidebar PanelKind = "references_sidebar"
)

// Valid reports whether k is a known panel kind
func (k PanelKind) Valid() bool {
	switch k {
	case PanelGuidelineModal, PanelMobileModal, PanelReferencesSidebar:
		return true
	}
	return false
}

// PanelState is the per-panel state of the active citation. PanelResolving
// names the in-flight step of a click; resolution is synchronous, so
// snapshots only ever report idle or one of the resolved states.
type PanelState string

const (
	PanelIdle          PanelState = "idle"
	PanelResolving     PanelState = "resolving"
	PanelResolvedFound PanelState = "resolved_found"
	PanelResolvedError PanelState = "resolved_error"
)

// PanelPlaceholder is shown while no reference is selected
const PanelPlaceholder = "Select a citation number to view the referenced source text."

// PanelSnapshot is the externally visible state of a panel
type PanelSnapshot struct {
	ID          string           `json:"id"`
	Kind        PanelKind        `json:"kind"`
	SummaryID   string           `json:"summary_id"`
	State       PanelState       `json:"state"`
	Active      *ActiveReference `json:"active,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	Closed      bool             `json:"closed"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// OpenPanelRequest opens a panel over a cached summary
type OpenPanelRequest struct {
	SummaryID string    `json:"summary_id"`
	Kind      PanelKind `json:"kind"`
}

// PanelClickRequest carries either an explicit occurrence or the dataset of
// the clicked element as reported by the delegated listener.
type PanelClickRequest struct {
	Number  string            `json:"number,omitempty"`
	Index   int               `json:"index,omitempty"`
	Dataset map[string]string `json:"dataset,omitempty"`
}
