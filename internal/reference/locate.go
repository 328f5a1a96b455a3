package reference

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// FallbackWindow is the length of the excerpt highlighted when the start
// word is found but the end word is not.
const FallbackWindow = 400

const (
	msgStartNotFound = "The referenced passage could not be located in the source text."
	msgEndNotFound   = "The end of the referenced passage could not be located; showing an excerpt from its start."
)

// whitespaceRun covers Unicode separators such as no-break and em spaces,
// which RE2's \s does not.
var whitespaceRun = regexp.MustCompile(`[\s\p{Z}\x{85}]+`)

// Locate finds the passage of sourceText bounded by startWord and endWord.
//
// Matching runs on a lowercase letters-and-whitespace projection of the text,
// so case, punctuation and digits never prevent a match. The reported range
// indexes characters (runes) of the surface-cleaned text, which is returned
// as FullText. Only the first occurrence is considered in each direction.
// Locate is pure: it never panics on malformed input and never mutates it.
func Locate(sourceText, startWord, endWord string) domain.LocateResult {
	cleaned := []rune(SurfaceClean(sourceText))
	alphaText, positions := project(cleaned)
	fullText := string(cleaned)

	alphaStart := AlphaProject(SurfaceClean(startWord))
	alphaEnd := AlphaProject(SurfaceClean(endWord))

	startIdx := indexRunes(alphaText, alphaStart, 0)
	if startIdx < 0 {
		return domain.LocateResult{
			Status:       domain.LocateNotFound,
			FullText:     fullText,
			IsError:      true,
			ErrorMessage: msgStartNotFound,
		}
	}

	start := positions[startIdx]
	afterStart := startIdx + utf8.RuneCountInString(alphaStart)

	endIdx := indexRunes(alphaText, alphaEnd, afterStart)
	if endIdx < 0 {
		end := start + FallbackWindow
		if end > len(cleaned) {
			end = len(cleaned)
		}
		return domain.LocateResult{
			Status:           domain.LocatePartial,
			FullText:         fullText,
			HighlightedRange: &domain.HighlightRange{Start: start, End: end},
			IsError:          true,
			ErrorMessage:     msgEndNotFound,
		}
	}

	// Map the last matched character rather than the first one plus the
	// word length: punctuation inside the end word in the original text
	// would otherwise cut the highlight short.
	lastIdx := endIdx + utf8.RuneCountInString(alphaEnd) - 1
	end := positions[lastIdx] + 1

	return domain.LocateResult{
		Status:           domain.LocateFound,
		FullText:         fullText,
		HighlightedRange: &domain.HighlightRange{Start: start, End: end},
	}
}

// SurfaceClean strips literal backspace escapes, turns literal newline
// escapes into spaces, collapses whitespace runs and trims the ends.
func SurfaceClean(s string) string {
	s = strings.ReplaceAll(s, `\b`, "")
	s = strings.ReplaceAll(s, "\b", "")
	s = strings.ReplaceAll(s, `\n`, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// AlphaProject keeps only letters and whitespace, lowercased.
func AlphaProject(s string) string {
	out, _ := project([]rune(s))
	return string(out)
}

// Highlighted returns the highlighted substring of a result, or "" when
// there is no range.
func Highlighted(res domain.LocateResult) string {
	if res.HighlightedRange == nil {
		return ""
	}
	runes := []rune(res.FullText)
	r := *res.HighlightedRange
	if r.Start < 0 || r.End > len(runes) || r.Start > r.End {
		return ""
	}
	return string(runes[r.Start:r.End])
}

// project returns the alpha projection of text along with, for every rune
// of the projection, its index in text.
func project(text []rune) ([]rune, []int) {
	out := make([]rune, 0, len(text))
	positions := make([]int, 0, len(text))
	for i, r := range text {
		if !isAlpha(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
		positions = append(positions, i)
	}
	return out, positions
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsSpace(r)
}

// indexRunes returns the rune index of the first occurrence of needle in
// hay at or after from, or -1. An empty needle never matches.
func indexRunes(hay []rune, needle string, from int) int {
	n := []rune(needle)
	if len(n) == 0 || from < 0 {
		return -1
	}
	for i := from; i+len(n) <= len(hay); i++ {
		if hay[i] != n[0] {
			continue
		}
		match := true
		for j := 1; j < len(n); j++ {
			if hay[i+j] != n[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
