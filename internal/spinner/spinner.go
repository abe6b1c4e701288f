// Package spinner shows a progress indicator on stderr while references are
// loaded and compared.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var frames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

// Spinner redraws a status line until stopped. A nil *Spinner is valid and
// does nothing, so callers can skip it when output is not interactive.
type Spinner struct {
	writer io.Writer
	delay  time.Duration

	mu      sync.Mutex
	message string
	done    int
	total   int
	active  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a stopped spinner.
func New(writer io.Writer, message string) *Spinner {
	return &Spinner{
		writer:  writer,
		delay:   100 * time.Millisecond,
		message: message,
	}
}

// ForTerminal returns a spinner when w is an interactive terminal and nil
// otherwise.
func ForTerminal(w io.Writer, message string) *Spinner {
	if !IsTerminal(w) {
		return nil
	}
	return New(w, message)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start begins drawing until ctx is done or Stop is called.
func (s *Spinner) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.active = true
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(runCtx)
}

// Stop halts the spinner and clears its line.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	if IsTerminal(s.writer) {
		fmt.Fprint(s.writer, "\r\033[2K")
	} else {
		fmt.Fprint(s.writer, "\r")
	}
}

// IsActive reports whether the spinner is drawing.
func (s *Spinner) IsActive() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// UpdateMessage replaces the message and clears any progress count.
func (s *Spinner) UpdateMessage(message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.done, s.total = 0, 0
}

// SetProgress appends a done/total counter to the message. Its signature
// matches source.LoadOptions.Progress and it may be called concurrently.
func (s *Spinner) SetProgress(done, total int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if done > s.done || total != s.total {
		s.done, s.total = done, total
	}
}

func (s *Spinner) line() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total > 0 {
		return fmt.Sprintf("%s (%d/%d)", s.message, s.done, s.total)
	}
	return s.message
}

func (s *Spinner) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprintf(s.writer, "\r\033[2K%s %s", frames[i%len(frames)], s.line())
		}
	}
}
