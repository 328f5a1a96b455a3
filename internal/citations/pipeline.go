package citations

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// Rendered is the output of one full render pass
type Rendered struct {
	HTML string `json:"html"`
	// Occurrences counts the markers seen per citation number
	Occurrences map[string]int `json:"occurrences"`
}

// Pipeline renders backend markdown into citation-hydrated HTML in three
// independent stages: Tokenize, RenderMarkdown, Hydrate.
type Pipeline struct {
	md goldmark.Markdown
}

// NewPipeline creates a pipeline with GitHub flavoured markdown enabled.
// Raw HTML in the markdown source is not passed through.
func NewPipeline() *Pipeline {
	return &Pipeline{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// RenderMarkdown converts markdown to HTML
func (p *Pipeline) RenderMarkdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Render runs a full pass over new document content. The counter is reset
// first; a nil counter gets a fresh one.
func (p *Pipeline) Render(markdown string, citations domain.CitationMap, counter *OccurrenceCounter) (Rendered, error) {
	if counter == nil {
		counter = NewOccurrenceCounter()
	}
	counter.Reset()

	body, err := p.RenderMarkdown(Tokenize(markdown))
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{
		HTML:        Hydrate(body, citations, counter),
		Occurrences: counter.Snapshot(),
	}, nil
}

var defaultPipeline = NewPipeline()

// RenderMarkdown converts markdown to HTML with the default pipeline
func RenderMarkdown(text string) (string, error) {
	return defaultPipeline.RenderMarkdown(text)
}
