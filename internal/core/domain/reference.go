package domain

// SourceDocument maps a citation number ("1", "2", ...) to the full text
// block the backend quoted from. Immutable for the lifetime of a summary view.
type SourceDocument map[string]string

// WordRange is the start/end word pair that bounds one cited extract
type WordRange struct {
	StartWord string `json:"start_word"`
	EndWord   string `json:"end_word"`
}

// PageReference maps a citation number to one WordRange per occurrence of
// that number in the rendered text, in document order.
type PageReference map[string][]WordRange

// Occurrence returns the word range for the index-th occurrence of number.
func (p PageReference) Occurrence(number string, index int) (WordRange, bool) {
	ranges, ok := p[number]
	if !ok || index < 0 || index >= len(ranges) {
		return WordRange{}, false
	}
	return ranges[index], true
}

// HighlightRange is a half-open [Start, End) character range into the
// cleaned source text.
type HighlightRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of characters covered
func (r HighlightRange) Len() int {
	return r.End - r.Start
}

// LocateStatus classifies a locator outcome
type LocateStatus string

const (
	LocateFound    LocateStatus = "found"
	LocatePartial  LocateStatus = "partial"
	LocateNotFound LocateStatus = "not_found"
)

// LocateResult is the outcome of matching a WordRange against source text.
// FullText is the surface-cleaned text the range indexes into.
type LocateResult struct {
	Status           LocateStatus    `json:"status"`
	FullText         string          `json:"full_text,omitempty"`
	HighlightedRange *HighlightRange `json:"highlighted_range,omitempty"`
	IsError          bool            `json:"is_error"`
	ErrorMessage     string          `json:"error_message,omitempty"`
}

// ActiveReference is the resolved state of one citation occurrence click
type ActiveReference struct {
	Number           string          `json:"number"`
	Index            int             `json:"index"`
	FullText         string          `json:"full_text,omitempty"`
	HighlightedRange *HighlightRange `json:"highlighted_range,omitempty"`
	IsError          bool            `json:"is_error"`
	ErrorMessage     string          `json:"error_message,omitempty"`
}

// Same reports whether a and the given occurrence identify the same click target
func (a *ActiveReference) Same(number string, index int) bool {
	return a != nil && a.Number == number && a.Index == index
}

// HasText reports whether there is source text to render
func (a *ActiveReference) HasText() bool {
	return a != nil && a.FullText != ""
}
