package citations

import (
	"regexp"
	"strings"
)

// Placeholders wrap a citation number between markdown tokenization and
// hydration. Both are private-use code points that markdown renderers pass
// through untouched.
const (
	placeholderOpen  = "\uE000"
	placeholderClose = "\uE001"
)

var (
	markerPattern      = regexp.MustCompile(`\[([1-9][0-9]*)\]`)
	placeholderPattern = regexp.MustCompile(placeholderOpen + `([1-9][0-9]*)` + placeholderClose)
)

// Tokenize replaces every bracketed positive integer in raw with a
// placeholder. Bracketed text that is not a positive integer and markdown
// link labels such as "[2](https://...)" are left as they are.
func Tokenize(raw string) string {
	matches := markerPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	last := 0
	for _, m := range matches {
		if m[1] < len(raw) && raw[m[1]] == '(' {
			continue
		}
		b.WriteString(raw[last:m[0]])
		b.WriteString(placeholderOpen)
		b.WriteString(raw[m[2]:m[3]])
		b.WriteString(placeholderClose)
		last = m[1]
	}
	b.WriteString(raw[last:])
	return b.String()
}
