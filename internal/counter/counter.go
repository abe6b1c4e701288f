// Package counter measures document length for detection reports.
//
// Words and characters are always available. Token counts use tiktoken's
// cl100k_base encoding, which gives reviewers a familiar sense of how large
// a submission is; when the encoding cannot be loaded the token count is
// simply omitted.
package counter

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"
)

// Counter counts one kind of unit in a text.
type Counter interface {
	Count(text string) int
	Name() string
}

// Method selects a Counter.
type Method int

const (
	Words Method = iota
	Characters
	Tokens
)

func (m Method) String() string {
	switch m {
	case Words:
		return "words"
	case Characters:
		return "characters"
	case Tokens:
		return "tokens"
	default:
		return "unknown"
	}
}

// NewCounter returns the Counter for method. Only Tokens can fail.
func NewCounter(method Method) (Counter, error) {
	switch method {
	case Words:
		return wordCounter{}, nil
	case Characters:
		return charCounter{}, nil
	case Tokens:
		return NewTokenCounter()
	default:
		return nil, fmt.Errorf("unknown counting method %d", int(method))
	}
}

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }
func (wordCounter) Name() string          { return "words" }

// charCounter counts runes, so accented characters count once.
type charCounter struct{}

func (charCounter) Count(text string) int { return utf8.RuneCountInString(text) }
func (charCounter) Name() string          { return "characters" }

// Stats summarises a document.
type Stats struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
	Tokens     int `json:"tokens,omitempty"`
}

var sharedTokens = sync.OnceValues(NewTokenCounter)

// Measure computes Stats for text. Tokens stays zero if the tokenizer is
// unavailable.
func Measure(text string) Stats {
	stats := Stats{
		Words:      wordCounter{}.Count(text),
		Characters: charCounter{}.Count(text),
	}

	tc, err := sharedTokens()
	if err != nil {
		slog.Debug("Token counting unavailable", "error", err)
		return stats
	}
	stats.Tokens = tc.Count(text)
	return stats
}
