package citations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single marker", "Start low [1].", "Start low " + placeholderOpen + "1" + placeholderClose + "."},
		{"multi digit", "See [12]", "See " + placeholderOpen + "12" + placeholderClose},
		{"adjacent markers", "[1][2]", placeholderOpen + "1" + placeholderClose + placeholderOpen + "2" + placeholderClose},
		{"non numeric left alone", "[a] and [1a] and [note]", "[a] and [1a] and [note]"},
		{"zero and leading zero left alone", "[0] [01]", "[0] [01]"},
		{"negative left alone", "[-1]", "[-1]"},
		{"markdown link label kept", "[2](https://example.org)", "[2](https://example.org)"},
		{"no markers", "plain text", "plain text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}
