package domain

// SourceType identifies where a citation came from. It drives which
// follow-up panel a citation marker opens.
type SourceType string

const (
	SourceGuidelines SourceType = "guidelines_database"
	SourceDrug       SourceType = "drug_database"
	SourceInternet   SourceType = "internet"
)

// Citation is the metadata the backend attaches to a citation number
type Citation struct {
	Title            string     `json:"title"`
	URL              string     `json:"url,omitempty"`
	Authors          string     `json:"authors,omitempty"`
	Year             string     `json:"year,omitempty"`
	Journal          string     `json:"journal,omitempty"`
	DOI              string     `json:"doi,omitempty"`
	SourceType       SourceType `json:"source_type"`
	DrugCitationType string     `json:"drug_citation_type,omitempty"`
	GuidelinesIndex  string     `json:"guidelines_index,omitempty"`
}

// CitationMap is keyed by the citation number as a string
type CitationMap map[string]Citation

// NavigationKind is the panel a citation click leads to
type NavigationKind string

const (
	NavigateGuideline NavigationKind = "guideline"
	NavigateDrug      NavigationKind = "drug"
	NavigateReference NavigationKind = "reference"
)

// NavigationTarget describes where a citation click should take the user
type NavigationTarget struct {
	Kind            NavigationKind `json:"kind"`
	Title           string         `json:"title"`
	GuidelinesIndex string         `json:"guidelines_index,omitempty"`
	DrugName        string         `json:"drug_name,omitempty"`
	URL             string         `json:"url,omitempty"`
}

// RequiresAuth reports whether opening the target needs a signed-in user
func (t NavigationTarget) RequiresAuth() bool {
	return t.Kind == NavigateGuideline || t.Kind == NavigateDrug
}
