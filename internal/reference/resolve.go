package reference

import (
	"fmt"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// Resolve turns one citation occurrence click into an ActiveReference.
//
// Every failure is reported through IsError/ErrorMessage and every message
// names the citation number. When the backend supplied fewer occurrence
// entries than the rendered text contains, the full source text is still
// returned so the panel can show it alongside the notice.
func Resolve(sources domain.SourceDocument, refs domain.PageReference, number string, index int) domain.ActiveReference {
	active := domain.ActiveReference{Number: number, Index: index}

	text, ok := sources[number]
	if !ok || SurfaceClean(text) == "" {
		active.IsError = true
		active.ErrorMessage = fmt.Sprintf("Source text for reference [%s] is not available.", number)
		return active
	}

	occurrence, ok := refs.Occurrence(number, index)
	if !ok {
		active.FullText = SurfaceClean(text)
		active.IsError = true
		active.ErrorMessage = fmt.Sprintf("No location data for occurrence %d of reference [%s]; showing the full source.", index+1, number)
		return active
	}

	res := Locate(text, occurrence.StartWord, occurrence.EndWord)
	active.FullText = res.FullText
	active.HighlightedRange = res.HighlightedRange
	active.IsError = res.IsError

	switch res.Status {
	case domain.LocateNotFound:
		active.ErrorMessage = fmt.Sprintf("Could not locate the passage for reference [%s] (starting %q) in the source text.", number, occurrence.StartWord)
	case domain.LocatePartial:
		active.ErrorMessage = fmt.Sprintf("Could not find where the passage for reference [%s] ends (%q); showing an excerpt from its start.", number, occurrence.EndWord)
	}
	return active
}
