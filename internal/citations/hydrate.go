package citations

import (
	"fmt"
	"html"
	"strings"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/metrics"
)

// Attribute names shared with the Dispatcher
const (
	AttrCitation    = "citation"
	AttrOccurrence  = "occurrence"
	AttrPlaceholder = "citation-placeholder"
	AttrSourceType  = "source-type"
)

// Hydrate replaces placeholders left by Tokenize with citation elements.
//
// Numbers present in citations become interactive spans carrying the
// citation metadata as data attributes. Missing numbers, or a nil map,
// become inert placeholder spans. When counter is non-nil every hydrated
// marker, including placeholders, takes the next occurrence index for its
// number.
//
// Only text content is hydrated. Placeholders inside a tag, such as a link
// title or image alt text, or inside code and pre elements revert to plain
// "[n]" text and take no occurrence index.
func Hydrate(htmlText string, citations domain.CitationMap, counter *OccurrenceCounter) string {
	matches := placeholderPattern.FindAllStringSubmatchIndex(htmlText, -1)
	if len(matches) == 0 {
		return htmlText
	}

	var (
		b     strings.Builder
		state htmlScanner
		last  int
	)
	b.Grow(len(htmlText))
	for _, m := range matches {
		state.advance(htmlText[last:m[0]])
		b.WriteString(htmlText[last:m[0]])
		last = m[1]

		number := htmlText[m[2]:m[3]]
		if !state.inText() {
			b.WriteString("[" + number + "]")
			continue
		}

		occurrence := -1
		if counter != nil {
			occurrence = counter.Next(number)
		}

		citation, ok := citations[number]
		if !ok {
			metrics.CitationMarkers.WithLabelValues("placeholder").Inc()
			b.WriteString(placeholderSpan(number))
			continue
		}
		metrics.CitationMarkers.WithLabelValues("citation").Inc()
		b.WriteString(citationSpan(number, occurrence, citation))
	}
	b.WriteString(htmlText[last:])
	return b.String()
}

// htmlScanner tracks just enough HTML structure to tell text content from
// tag markup and code.
type htmlScanner struct {
	inTag     bool
	quote     byte
	name      strings.Builder
	nameDone  bool
	codeDepth int
}

func (s *htmlScanner) inText() bool {
	return !s.inTag && s.codeDepth == 0
}

func (s *htmlScanner) advance(text string) {
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case s.quote != 0:
			if c == s.quote {
				s.quote = 0
			}
		case !s.inTag:
			if c == '<' {
				s.inTag = true
				s.nameDone = false
				s.name.Reset()
			}
		case c == '>':
			s.inTag = false
			s.closeTag()
		case c == '"' || c == '\'':
			s.quote = c
			s.nameDone = true
		case !s.nameDone:
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' || (c == '/' && s.name.Len() > 0) {
				s.nameDone = true
			} else {
				s.name.WriteByte(lower(c))
			}
		}
	}
}

func (s *htmlScanner) closeTag() {
	switch s.name.String() {
	case "code", "pre":
		s.codeDepth++
	case "/code", "/pre":
		if s.codeDepth > 0 {
			s.codeDepth--
		}
	}
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// Format rewrites the citation markers of already rendered HTML without
// occurrence tracking. It keeps no state between calls.
func Format(htmlText string, citations domain.CitationMap) string {
	return Hydrate(Tokenize(htmlText), citations, nil)
}

func citationSpan(number string, occurrence int, c domain.Citation) string {
	var b strings.Builder
	b.WriteString(`<span class="citation citation-`)
	b.WriteString(html.EscapeString(string(c.SourceType)))
	b.WriteString(`" role="button" tabindex="0"`)
	writeAttr(&b, "data-"+AttrCitation, number)
	if occurrence >= 0 {
		writeAttr(&b, "data-"+AttrOccurrence, fmt.Sprint(occurrence))
	}
	writeAttr(&b, "data-"+AttrSourceType, string(c.SourceType))
	writeAttr(&b, "data-title", c.Title)
	writeAttr(&b, "data-url", c.URL)
	writeAttr(&b, "data-authors", c.Authors)
	writeAttr(&b, "data-year", c.Year)
	writeAttr(&b, "data-journal", c.Journal)
	writeAttr(&b, "data-doi", c.DOI)
	writeAttr(&b, "data-drug-citation-type", c.DrugCitationType)
	writeAttr(&b, "data-guidelines-index", c.GuidelinesIndex)
	writeAttr(&b, "title", c.Title)
	b.WriteString(">")
	b.WriteString(number)
	b.WriteString("</span>")
	return b.String()
}

func placeholderSpan(number string) string {
	return `<span class="citation citation-placeholder" aria-disabled="true" data-` +
		AttrPlaceholder + `="` + number + `">` + number + `</span>`
}

func writeAttr(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`"`)
}
