// Package report renders detection reports for people (Markdown, plain text)
// and for tools (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/chriscorrea/copycheck/internal/counter"
	"github.com/chriscorrea/copycheck/internal/detect"
)

// Format selects the output format.
type Format int

const (
	// Markdown is the default.
	Markdown Format = iota
	Text
	JSON
)

func (f Format) String() string {
	switch f {
	case Markdown:
		return "Markdown"
	case Text:
		return "Text"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// ParseFormat accepts md, markdown, text, txt and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return Markdown, nil
	case "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return Markdown, fmt.Errorf("unknown output format %q", s)
	}
}

// DefaultMaxEvidence is the number of highlighted sentences shown per flagged
// reference.
const DefaultMaxEvidence = 3

// Options controls rendering.
type Options struct {
	Format      Format
	Color       bool // ANSI highlighting in Text output
	MaxEvidence int
}

// Status is the verdict label for a single similarity.
func Status(similarity, threshold float64) string {
	if detect.Exceeds(similarity, threshold) {
		return "PLAGIARIZED"
	}
	return "OK"
}

// Percent formats a similarity in [0,1] as a percentage with two decimals.
func Percent(similarity float64) string {
	return fmt.Sprintf("%.2f%%", similarity*100)
}

// UseColor reports whether f is a terminal that accepts ANSI colour.
// NO_COLOR disables it.
func UseColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// jsonReport adds the submission measurements to the detection report.
type jsonReport struct {
	*detect.Report
	SubmissionStats counter.Stats `json:"submission_stats"`
}

// Render formats r. submission is the checked document; its text supplies
// the highlighted evidence sentences.
func Render(r *detect.Report, submission detect.Document, opts Options) (string, error) {
	if r == nil {
		return "", fmt.Errorf("nothing to render")
	}
	if opts.MaxEvidence <= 0 {
		opts.MaxEvidence = DefaultMaxEvidence
	}

	stats := counter.Measure(submission.Content)

	switch opts.Format {
	case JSON:
		data, err := json.MarshalIndent(jsonReport{Report: r, SubmissionStats: stats}, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode report: %w", err)
		}
		return string(data) + "\n", nil
	case Text:
		return renderText(r, submission, stats, opts), nil
	case Markdown:
		return renderMarkdown(r, submission, stats, opts), nil
	default:
		return "", fmt.Errorf("unsupported output format %v", opts.Format)
	}
}

func verdict(r *detect.Report) string {
	if len(r.Plagiarized) > 0 {
		return fmt.Sprintf("PLAGIARIZED: %d of %d references above %s",
			len(r.Plagiarized), r.Stats.TotalChecked, Percent(r.Threshold))
	}
	return fmt.Sprintf("OK: no reference above %s", Percent(r.Threshold))
}

func sizeLine(stats counter.Stats) string {
	line := fmt.Sprintf("%d words, %d characters", stats.Words, stats.Characters)
	if stats.Tokens > 0 {
		line += fmt.Sprintf(", %d tokens", stats.Tokens)
	}
	return line
}

func statsLines(s detect.Stats) []string {
	lines := []string{
		fmt.Sprintf("Documents checked: %d", s.TotalChecked),
		fmt.Sprintf("Flagged: %d", s.PlagiarizedCount),
	}
	if s.Similarity == nil {
		return append(lines, "Similarity: n/a")
	}
	return append(lines,
		"Max similarity: "+Percent(s.Similarity.Max),
		"Average similarity: "+Percent(s.Similarity.Avg),
		"Min similarity: "+Percent(s.Similarity.Min),
	)
}
