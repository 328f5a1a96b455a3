package domain

// DrugInfo is the monograph for one drug
type DrugInfo struct {
	Name            string `json:"name"`
	MarkdownContent string `json:"markdown_content"`
	PDFURL          string `json:"pdf_url,omitempty"`
	HTML            string `json:"html,omitempty"`
}

// DrugLibraryEntry is one row of the browsable drug library
type DrugLibraryEntry struct {
	Name        string `json:"name"`
	GenericName string `json:"generic_name,omitempty"`
	Category    string `json:"category,omitempty"`
}

// BrandOption is a brand-name product that maps onto a generic drug
type BrandOption struct {
	BrandName    string `json:"brand_name"`
	GenericName  string `json:"generic_name"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// DrugSearchResult is the enhanced search response: an exact match when the
// query names a drug directly, plus brand options otherwise.
type DrugSearchResult struct {
	Query        string        `json:"query"`
	DirectMatch  *DrugInfo     `json:"direct_match,omitempty"`
	BrandOptions []BrandOption `json:"brand_options"`
}

// DrugLibraryQuery filters the drug library listing
type DrugLibraryQuery struct {
	Letter   string `json:"letter,omitempty"`
	Database string `json:"database,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
