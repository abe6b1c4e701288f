package detect

import (
	"testing"

	"github.com/chriscorrea/copycheck/internal/phrase"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		matches []phrase.Match
		want    string
	}{
		{
			name:    "no matches",
			text:    "Original text.",
			matches: nil,
			want:    "Original text.",
		},
		{
			name:    "case insensitive against original",
			text:    "Intro. The Quick Brown Fox jumps.",
			matches: []phrase.Match{{Phrase: "the quick brown fox", Length: 4}},
			want:    "Intro. [The Quick Brown Fox] jumps.",
		},
		{
			name:    "spans line breaks",
			text:    "the quick\nbrown fox",
			matches: []phrase.Match{{Phrase: "the quick brown fox", Length: 4}},
			want:    "[the quick\nbrown fox]",
		},
		{
			name: "longer phrase wins overlaps",
			text: "one two three four five six",
			matches: []phrase.Match{
				{Phrase: "two three four five six", Length: 5},
				{Phrase: "one two three four five six", Length: 6},
			},
			want: "[one two three four five six]",
		},
		{
			name:    "regex metacharacters are literal",
			text:    "cost (in usd) is 5.00 total",
			matches: []phrase.Match{{Phrase: "(in usd) is 5.00", Length: 4}},
			want:    "cost [(in usd) is 5.00] total",
		},
		{
			name:    "every occurrence",
			text:    "a b c d e x a b c d e",
			matches: []phrase.Match{{Phrase: "a b c d e", Length: 5}},
			want:    "[a b c d e] x [a b c d e]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(tt.text, tt.matches, "[", "]"); got != tt.want {
				t.Errorf("Highlight() = %q, want %q", got, tt.want)
			}
		})
	}
}
