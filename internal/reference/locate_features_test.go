package reference

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

type locateFeature struct {
	sources domain.SourceDocument
	refs    domain.PageReference
	active  domain.ActiveReference
	status  domain.LocateStatus
}

func (f *locateFeature) sourceTextIs(number, text string) error {
	f.sources[number] = text
	return nil
}

func (f *locateFeature) occurrenceBoundedBy(index int, number, start, end string) error {
	ranges := make([]domain.WordRange, index+1)
	ranges[index] = domain.WordRange{StartWord: start, EndWord: end}
	f.refs[number] = ranges

	f.status = Locate(f.sources[number], start, end).Status
	f.active = Resolve(f.sources, f.refs, number, index)
	return nil
}

func (f *locateFeature) occurrenceWithoutLocationData(index int, number string) error {
	f.refs[number] = make([]domain.WordRange, index)
	f.active = Resolve(f.sources, f.refs, number, index)
	return nil
}

func (f *locateFeature) statusIs(want string) error {
	if string(f.status) != want {
		return fmt.Errorf("expected status %q, got %q", want, f.status)
	}
	return nil
}

func (f *locateFeature) highlightedTextIs(want string) error {
	got := f.highlighted()
	if got != want {
		return fmt.Errorf("expected highlight %q, got %q", want, got)
	}
	return nil
}

func (f *locateFeature) noErrorReported() error {
	if f.active.IsError || f.active.ErrorMessage != "" {
		return fmt.Errorf("unexpected error: %s", f.active.ErrorMessage)
	}
	return nil
}

func (f *locateFeature) nothingHighlighted() error {
	if f.active.HighlightedRange != nil {
		return fmt.Errorf("expected no highlight, got %+v", *f.active.HighlightedRange)
	}
	return nil
}

func (f *locateFeature) errorMentions(fragment string) error {
	if !f.active.IsError {
		return fmt.Errorf("expected an error")
	}
	if !strings.Contains(f.active.ErrorMessage, fragment) {
		return fmt.Errorf("error %q does not mention %q", f.active.ErrorMessage, fragment)
	}
	return nil
}

func (f *locateFeature) highlightStartsAt(word string) error {
	if f.active.HighlightedRange == nil {
		return fmt.Errorf("nothing highlighted")
	}
	want := len([]rune(f.active.FullText[:strings.Index(f.active.FullText, word)]))
	if f.active.HighlightedRange.Start != want {
		return fmt.Errorf("expected start %d, got %d", want, f.active.HighlightedRange.Start)
	}
	return nil
}

func (f *locateFeature) highlightAtMost(n int) error {
	if f.active.HighlightedRange == nil {
		return fmt.Errorf("nothing highlighted")
	}
	if l := f.active.HighlightedRange.Len(); l > n {
		return fmt.Errorf("highlight is %d characters long", l)
	}
	return nil
}

func (f *locateFeature) fullTextShown() error {
	if !f.active.HasText() {
		return fmt.Errorf("expected the full source text")
	}
	return nil
}

func (f *locateFeature) highlighted() string {
	return Highlighted(domain.LocateResult{FullText: f.active.FullText, HighlightedRange: f.active.HighlightedRange})
}

func initializeLocateScenario(ctx *godog.ScenarioContext) {
	f := &locateFeature{
		sources: domain.SourceDocument{},
		refs:    domain.PageReference{},
	}

	ctx.Step(`^the source text for reference "([^"]*)" is "([^"]*)"$`, f.sourceTextIs)
	ctx.Step(`^occurrence (\d+) of reference "([^"]*)" is bounded by "([^"]*)" and "([^"]*)"$`, f.occurrenceBoundedBy)
	ctx.Step(`^occurrence (\d+) of reference "([^"]*)" is resolved without location data$`, f.occurrenceWithoutLocationData)
	ctx.Step(`^the locate status is "([^"]*)"$`, f.statusIs)
	ctx.Step(`^the highlighted text is "([^"]*)"$`, f.highlightedTextIs)
	ctx.Step(`^no error is reported$`, f.noErrorReported)
	ctx.Step(`^nothing is highlighted$`, f.nothingHighlighted)
	ctx.Step(`^the error message mentions "([^"]*)"$`, f.errorMentions)
	ctx.Step(`^the highlight starts where "([^"]*)" starts$`, f.highlightStartsAt)
	ctx.Step(`^the highlight is at most (\d+) characters long$`, f.highlightAtMost)
	ctx.Step(`^the full source text is still shown$`, f.fullTextShown)
}

func TestLocateFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "locate",
		ScenarioInitializer: initializeLocateScenario,
		Options: &godog.Options{
			Format:   "progress",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("locate feature scenarios failed")
	}
}
