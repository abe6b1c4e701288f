package report

import (
	"log/slog"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/chriscorrea/copycheck/internal/detect"
	"github.com/chriscorrea/copycheck/internal/normalize"
	"github.com/chriscorrea/copycheck/internal/phrase"
)

// evidenceSentences returns up to limit sentences of text that contain a
// matched phrase, with the phrases wrapped in open/close.
func evidenceSentences(text string, matches []phrase.Match, limit int, open, close string) []string {
	if text == "" || len(matches) == 0 || limit <= 0 {
		return nil
	}

	var evidence []string
	for _, sentence := range sentences(text) {
		if !containsAny(sentence, matches) {
			continue
		}
		evidence = append(evidence, detect.Highlight(sentence, matches, open, close))
		if len(evidence) == limit {
			break
		}
	}
	return evidence
}

// sentences segments text with prose, collapsing internal line breaks.
// Segmentation failures fall back to treating the text as one sentence.
func sentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		slog.Debug("Sentence segmentation failed", "error", err)
		return []string{strings.Join(strings.Fields(text), " ")}
	}

	var out []string
	for _, s := range doc.Sentences() {
		if flat := strings.Join(strings.Fields(s.Text), " "); flat != "" {
			out = append(out, flat)
		}
	}
	return out
}

func containsAny(sentence string, matches []phrase.Match) bool {
	words := " " + strings.Join(normalize.Words(sentence), " ") + " "
	for _, m := range matches {
		if strings.Contains(words, " "+m.Phrase+" ") {
			return true
		}
	}
	return false
}
