package normalize

import (
	"fmt"
	"sort"
	"strings"
)

// StopwordSet maps a token to "excluded from the vocabulary".
type StopwordSet map[string]struct{}

// Contains reports whether token is a stopword.
func (s StopwordSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// With returns a copy of s extended with extra (lower-cased, trimmed) words.
func (s StopwordSet) With(extra ...string) StopwordSet {
	out := make(StopwordSet, len(s)+len(extra))
	for w := range s {
		out[w] = struct{}{}
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out[w] = struct{}{}
		}
	}
	return out
}

// Sorted returns the stopwords in lexical order.
func (s StopwordSet) Sorted() []string {
	words := make([]string, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// NewStopwordSet builds a set from a word list.
func NewStopwordSet(words ...string) StopwordSet {
	return StopwordSet{}.With(words...)
}

// Built-in languages accepted by Stopwords.
const (
	Indonesian = "indonesian"
	English    = "english"
	None       = "none"
)

// indonesianStopwords are short Indonesian function words.
var indonesianStopwords = []string{
	"yang", "dan", "di", "dari", "ke", "pada", "untuk", "adalah",
	"dengan", "dalam", "ini", "itu", "atau", "akan", "oleh", "telah",
	"juga", "sebagai", "dapat", "lebih", "tidak", "ada", "sudah",
	"satu", "dua", "tiga", "bisa", "serta", "antara", "tersebut",
	"sangat", "karena", "hingga", "melalui", "terhadap", "harus",
	"mereka", "sama", "setiap", "seperti", "semua", "namun", "masih",
	"saat", "hanya", "kini", "pula", "bila", "maka", "ia", "kami",
}

var englishStopwords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
	"had", "her", "was", "one", "our", "out", "has", "his", "how", "its",
	"who", "did", "get", "him", "she", "too", "use", "that", "with", "have",
	"this", "will", "your", "from", "they", "been", "were", "what", "when",
	"which", "their", "there", "would", "about", "into", "than", "them",
	"then", "these", "those", "also", "such", "only", "other", "some",
	"could", "should", "over", "more", "most", "very", "just", "each",
}

// Stopwords returns the built-in stopword set for language. An empty
// language is treated as Indonesian.
func Stopwords(language string) (StopwordSet, error) {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", Indonesian:
		return NewStopwordSet(indonesianStopwords...), nil
	case English:
		return NewStopwordSet(englishStopwords...), nil
	case None:
		return StopwordSet{}, nil
	default:
		return nil, fmt.Errorf("unknown stopword language %q (want %s, %s or %s)", language, Indonesian, English, None)
	}
}
