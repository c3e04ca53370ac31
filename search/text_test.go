package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain words pass through", "risk assessment", "risk assessment"},
		{"surrounding whitespace trimmed", "  cyber security \n", "cyber security"},
		{"quoted phrase preserved", `"software update"`, `"software update"`},
		{"hyphen is quoted", "over-the-air", `"over-the-air"`},
		{"colon is quoted", "title:threat", `"title:threat"`},
		{"asterisk is quoted", "threat*", `"threat*"`},
		{"parentheses are quoted", "7.2.2.2(a)", `"7.2.2.2(a)"`},
		{"caret is quoted", "^risk", `"^risk"`},
		{"brackets and braces are quoted", "[WP-09-01] {x}", `"[WP-09-01] {x}"`},
		{"plus is quoted", "a+b", `"a+b"`},
		{"embedded quote doubled", `say "hello`, `"say ""hello"`},
		{"lone quote is not a phrase", `"`, `""""`},
		{"quote only at start", `"risk`, `"""risk"`},
		{"period passes through", "7.2.2.2", "7.2.2.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw))
		})
	}
}
