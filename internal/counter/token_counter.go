package counter

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// TokenCounter counts tiktoken tokens. It is safe for concurrent use.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

// NewTokenCounter loads the cl100k_base encoding.
func NewTokenCounter() (Counter, error) {
	slog.Debug("Initializing token counter", "encoding", encodingName)

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s encoding: %w", encodingName, err)
	}
	return &TokenCounter{encoding: encoding}, nil
}

func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.encoding.Encode(text, nil, nil))
}

func (tc *TokenCounter) Name() string {
	return "tokens (" + encodingName + ")"
}
