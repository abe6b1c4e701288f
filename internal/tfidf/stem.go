package tfidf

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball"
)

// stemmerLanguages are the snowball languages accepted as Options.Stemmer.
var stemmerLanguages = map[string]struct{}{
	"english":   {},
	"french":    {},
	"hungarian": {},
	"norwegian": {},
	"russian":   {},
	"spanish":   {},
	"swedish":   {},
}

// newStemmer returns nil when stemming is disabled.
func newStemmer(language string) (func(string) string, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return nil, nil
	}
	if _, ok := stemmerLanguages[language]; !ok {
		return nil, fmt.Errorf("unsupported stemmer language %q", language)
	}

	return func(token string) string {
		stemmed, err := snowball.Stem(token, language, true)
		if err != nil || stemmed == "" {
			// if stemming fails, use the original token
			return token
		}
		return stemmed
	}, nil
}
