package report

import (
	"fmt"
	"strings"

	"github.com/chriscorrea/copycheck/internal/counter"
	"github.com/chriscorrea/copycheck/internal/detect"
)

func renderMarkdown(r *detect.Report, submission detect.Document, stats counter.Stats, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Plagiarism report: %s\n\n", mdEscape(r.Submission))
	fmt.Fprintf(&b, "**%s**\n\n", verdict(r))
	fmt.Fprintf(&b, "Submission: %s. Threshold: %s.\n\n", sizeLine(stats), Percent(r.Threshold))

	if len(r.Results) == 0 {
		b.WriteString("No reference documents were checked.\n")
		return b.String()
	}

	b.WriteString("## Results\n\n")
	b.WriteString("| # | Reference | Similarity | Status |\n")
	b.WriteString("|---|---|---:|---|\n")
	for i, res := range r.Results {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, mdEscape(res.DocName), Percent(res.Similarity), Status(res.Similarity, r.Threshold))
	}
	b.WriteString("\n")

	if len(r.Plagiarized) > 0 {
		b.WriteString("## Flagged references\n\n")
		for _, res := range r.Plagiarized {
			fmt.Fprintf(&b, "### %s (%s)\n\n", mdEscape(res.DocName), Percent(res.Similarity))
			if len(res.MatchedPhrases) == 0 {
				b.WriteString("No shared phrases of the minimum length.\n\n")
				continue
			}
			b.WriteString("Matched phrases:\n\n")
			for _, m := range res.MatchedPhrases {
				fmt.Fprintf(&b, "- \"%s\" (%d words)\n", m.Phrase, m.Length)
			}
			b.WriteString("\n")

			evidence := evidenceSentences(submission.Content, res.MatchedPhrases, opts.MaxEvidence, "**", "**")
			if len(evidence) > 0 {
				b.WriteString("Evidence in the submission:\n\n")
				for _, s := range evidence {
					fmt.Fprintf(&b, "> %s\n>\n", s)
				}
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("## Similarity by reference\n\n```text\n")
	b.WriteString(chart(r))
	b.WriteString("```\n\n")

	b.WriteString("## Statistics\n\n")
	for _, line := range statsLines(r.Stats) {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

// mdEscape keeps file names from breaking table cells.
func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
