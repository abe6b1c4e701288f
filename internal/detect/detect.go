// Package detect compares a submitted document against a reference corpus
// and reports which references are likely sources of plagiarism.
//
// Pipeline for one Detect call:
//  1. normalize the submission and every reference (normalize.Text)
//  2. build a fresh joint TF-IDF space (tfidf.Vectorizer.Build)
//  3. score the submission against each reference (cosine similarity)
//  4. flag references whose similarity is strictly above the threshold
//  5. extract shared phrases from the original text of flagged references only
//  6. sort results by similarity and compute summary statistics
//
// A Detector carries configuration only. No vocabulary or vectors survive a
// call, so a single Detector can serve concurrent requests.
package detect

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/chriscorrea/copycheck/internal/normalize"
	"github.com/chriscorrea/copycheck/internal/phrase"
	"github.com/chriscorrea/copycheck/internal/tfidf"
)

// DefaultThreshold is the similarity above which a reference is flagged.
const DefaultThreshold = 0.7

// ErrInvalidThreshold is returned for thresholds outside the open interval (0,1).
var ErrInvalidThreshold = errors.New("threshold must be strictly between 0 and 1")

// Options configures a Detector.
type Options struct {
	Vectorizer tfidf.Options
	Phrases    phrase.Options
}

// Detector runs detection requests.
type Detector struct {
	vectorizer *tfidf.Vectorizer
	phrases    phrase.Options
}

// New validates opts and returns a Detector.
func New(opts Options) (*Detector, error) {
	vectorizer, err := tfidf.NewVectorizer(opts.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("failed to create vectorizer: %w", err)
	}
	return &Detector{vectorizer: vectorizer, phrases: opts.Phrases}, nil
}

// ValidateThreshold returns ErrInvalidThreshold unless 0 < threshold < 1.
func ValidateThreshold(threshold float64) error {
	if !(threshold > 0 && threshold < 1) {
		return fmt.Errorf("%w, got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// Exceeds reports whether a similarity is flagged at threshold. A score equal
// to the threshold is not flagged.
func Exceeds(similarity, threshold float64) bool {
	return similarity > threshold
}

// Score returns the cosine similarity of submitted to each reference, in
// corpus order, without phrase matching or flagging.
func (d *Detector) Score(submitted Document, references []Document) []float64 {
	normalized := make([]string, len(references))
	for i, ref := range references {
		normalized[i] = normalize.Text(ref.Content)
	}

	// a fresh space per call; the vocabulary depends on this exact input set
	return d.vectorizer.Build(normalize.Text(submitted.Content), normalized).Scores()
}

// Detect checks submitted against references. The only error is an invalid
// threshold; empty documents and an empty corpus produce valid reports.
func (d *Detector) Detect(submitted Document, references []Document, threshold float64) (*Report, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	slog.Debug("Starting detection", "submission", submitted.Name, "references", len(references), "threshold", threshold)

	similarities := d.Score(submitted, references)

	names := make([]string, len(references))
	results := make([]Result, len(references))
	flagged := 0
	for i, ref := range references {
		names[i] = ref.Name
		result := Result{
			DocName:        ref.Name,
			Similarity:     similarities[i],
			IsPlagiarized:  Exceeds(similarities[i], threshold),
			MatchedPhrases: []phrase.Match{},
		}
		if result.IsPlagiarized {
			flagged++
			// phrases come from the original text, not the normalized form
			result.MatchedPhrases = phrase.FindMatches(submitted.Content, ref.Content, d.phrases)
		}
		results[i] = result
	}

	// stable: ties keep corpus order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	plagiarized := make([]Result, 0, flagged)
	for _, r := range results {
		if r.IsPlagiarized {
			plagiarized = append(plagiarized, r)
		}
	}

	report := &Report{
		Submission:   submitted.Name,
		Threshold:    threshold,
		Results:      results,
		Plagiarized:  plagiarized,
		Stats:        computeStats(similarities, flagged),
		References:   names,
		Similarities: similarities,
	}

	slog.Debug("Detection completed", "submission", submitted.Name, "checked", len(results), "plagiarized", flagged)
	return report, nil
}
