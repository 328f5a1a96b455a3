package citations

import (
	"strconv"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// Click is a parsed click on a hydrated citation element
type Click struct {
	Number     string
	Occurrence int
	SourceType domain.SourceType
	Title      string
}

// Dispatcher is the single delegated click listener of one panel. It reads
// the data attributes of the clicked element and hands valid citation
// clicks to its callback.
type Dispatcher struct {
	onClick func(Click)
}

// NewDispatcher creates a dispatcher calling onClick for every citation click
func NewDispatcher(onClick func(Click)) *Dispatcher {
	return &Dispatcher{onClick: onClick}
}

// Dispatch handles a click given the element's dataset, keyed without the
// "data-" prefix. It reports whether the callback was invoked. Placeholders
// and elements that are not citations are ignored.
func (d *Dispatcher) Dispatch(dataset map[string]string) bool {
	click, ok := ParseDataset(dataset)
	if !ok || d.onClick == nil {
		return false
	}
	d.onClick(click)
	return true
}

// ParseDataset extracts a Click from an element dataset
func ParseDataset(dataset map[string]string) (Click, bool) {
	if _, inert := dataset[AttrPlaceholder]; inert {
		return Click{}, false
	}
	number, ok := dataset[AttrCitation]
	if !ok || !validNumber(number) {
		return Click{}, false
	}

	occurrence := 0
	if raw, ok := dataset[AttrOccurrence]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Click{}, false
		}
		occurrence = n
	}

	return Click{
		Number:     number,
		Occurrence: occurrence,
		SourceType: domain.SourceType(dataset[AttrSourceType]),
		Title:      dataset["title"],
	}, true
}

func validNumber(s string) bool {
	if s == "" || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
