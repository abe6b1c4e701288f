package report

import (
	"fmt"
	"strings"

	"github.com/chriscorrea/copycheck/internal/counter"
	"github.com/chriscorrea/copycheck/internal/detect"
)

const (
	ansiHighlight = "\033[1;31m"
	ansiReset     = "\033[0m"
)

func renderText(r *detect.Report, submission detect.Document, stats counter.Stats, opts Options) string {
	var b strings.Builder

	open, close := "[", "]"
	if opts.Color {
		open, close = ansiHighlight, ansiReset
	}

	fmt.Fprintf(&b, "Plagiarism report: %s\n", r.Submission)
	fmt.Fprintf(&b, "%s\n", verdict(r))
	fmt.Fprintf(&b, "Submission: %s. Threshold: %s.\n\n", sizeLine(stats), Percent(r.Threshold))

	if len(r.Results) == 0 {
		b.WriteString("No reference documents were checked.\n")
		return b.String()
	}

	width := 0
	for _, res := range r.Results {
		width = max(width, len(res.DocName))
	}
	for _, res := range r.Results {
		fmt.Fprintf(&b, "%-*s  %7s  %s\n", width, res.DocName, Percent(res.Similarity), Status(res.Similarity, r.Threshold))
	}
	b.WriteString("\n")

	for _, res := range r.Plagiarized {
		fmt.Fprintf(&b, "%s (%s)\n", res.DocName, Percent(res.Similarity))
		for _, m := range res.MatchedPhrases {
			fmt.Fprintf(&b, "  - %q (%d words)\n", m.Phrase, m.Length)
		}
		for _, s := range evidenceSentences(submission.Content, res.MatchedPhrases, opts.MaxEvidence, open, close) {
			fmt.Fprintf(&b, "  > %s\n", s)
		}
		b.WriteString("\n")
	}

	b.WriteString(chart(r))
	b.WriteString("\n")
	for _, line := range statsLines(r.Stats) {
		b.WriteString(line + "\n")
	}
	return b.String()
}
