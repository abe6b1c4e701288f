// Package tfidf builds the joint TF-IDF vector space used to score a
// submission against a reference corpus.
//
// A Space is built over {submission, reference 1..N} in one pass: row 0 is
// always the submission and rows 1..N follow corpus order. The vocabulary is
// derived from that combined set only, so a Space must never be reused for a
// different submission or corpus. Vectorizer holds configuration but no
// vocabulary state; every Build call starts from scratch.
//
// Weighting:
//   - Term frequency (TF): raw count of the term in the document
//   - Inverse document frequency (IDF): ln((1+n)/(1+df)) + 1, which is finite
//     and positive even when a term occurs in every document
//
// Rows are L2-normalised, so cosine similarity between rows reduces to their
// dot product; Cosine still divides by both norms so it is correct for any
// vector.
//
// Usage Example:
//
//	v, _ := tfidf.NewVectorizer(tfidf.Options{Stopwords: stop})
//	space := v.Build(submission, references)
//	scores := space.Scores()
package tfidf

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/chriscorrea/copycheck/internal/normalize"
)

// tokenRegex is compiled once at package initialization for efficient tokenization
var tokenRegex = regexp.MustCompile(`[a-z]+`)

// Default vectorizer settings.
const (
	DefaultMinTokenLength = 3
	DefaultMaxNgram       = 2
)

// Options configures a Vectorizer. Zero values fall back to the defaults.
type Options struct {
	Stopwords      normalize.StopwordSet // tokens excluded from the vocabulary
	MinTokenLength int                   // shortest alphabetic token kept (default 3)
	MaxNgram       int                   // 1 = unigrams, 2 = unigrams+bigrams (default 2)
	Stemmer        string                // "" (none) or a snowball language such as "english"
}

// Vectorizer turns a set of normalized texts into a Space.
// It is immutable after construction and safe for concurrent use.
type Vectorizer struct {
	stopwords      normalize.StopwordSet
	minTokenLength int
	maxNgram       int
	stem           func(string) string
}

// NewVectorizer validates opts and returns a Vectorizer.
func NewVectorizer(opts Options) (*Vectorizer, error) {
	if opts.MinTokenLength == 0 {
		opts.MinTokenLength = DefaultMinTokenLength
	}
	if opts.MaxNgram == 0 {
		opts.MaxNgram = DefaultMaxNgram
	}
	if opts.MinTokenLength < 1 {
		return nil, fmt.Errorf("min token length must be positive, got %d", opts.MinTokenLength)
	}
	if opts.MaxNgram < 1 || opts.MaxNgram > 3 {
		return nil, fmt.Errorf("max n-gram must be between 1 and 3, got %d", opts.MaxNgram)
	}

	stem, err := newStemmer(opts.Stemmer)
	if err != nil {
		return nil, err
	}

	stopwords := opts.Stopwords
	if stopwords == nil {
		stopwords = normalize.StopwordSet{}
	}

	return &Vectorizer{
		stopwords:      stopwords,
		minTokenLength: opts.MinTokenLength,
		maxNgram:       opts.MaxNgram,
		stem:           stem,
	}, nil
}

// Space is the weighted term matrix over one submission and its corpus.
type Space struct {
	Vocabulary []string  // sorted terms; Vector indices point into it
	IDF        []float64 // IDF per vocabulary term
	Rows       []Vector  // row 0 = submission, rows 1..N = references
}

// Build creates the joint Space for a submission and its references.
// Inputs are expected to be normalized with normalize.Text.
//
// If the combined texts yield no vocabulary (all empty, all stopwords, all
// short words), every row is the zero vector and every score is 0.
func (v *Vectorizer) Build(submitted string, references []string) *Space {
	documents := make([]string, 0, len(references)+1)
	documents = append(documents, submitted)
	documents = append(documents, references...)

	slog.Debug("Building TF-IDF space", "documentCount", len(documents))

	// count terms per document and track document frequency for each unique term
	termCounts := make([]map[string]int, len(documents))
	docFrequencies := make(map[string]int)
	for docIdx, doc := range documents {
		counts := calculateTermCounts(v.terms(doc))
		termCounts[docIdx] = counts
		for term := range counts {
			docFrequencies[term]++
		}
	}

	space := &Space{
		Vocabulary: make([]string, 0, len(docFrequencies)),
		Rows:       make([]Vector, len(documents)),
	}

	if len(docFrequencies) == 0 {
		slog.Debug("Degenerate vocabulary, all similarities will be zero", "documentCount", len(documents))
		return space
	}

	for term := range docFrequencies {
		space.Vocabulary = append(space.Vocabulary, term)
	}
	sort.Strings(space.Vocabulary)

	index := make(map[string]int, len(space.Vocabulary))
	space.IDF = make([]float64, len(space.Vocabulary))
	n := float64(len(documents))
	for i, term := range space.Vocabulary {
		index[term] = i
		space.IDF[i] = smoothIDF(n, float64(docFrequencies[term]))
	}

	for docIdx, counts := range termCounts {
		row := Vector{
			Indices: make([]int, 0, len(counts)),
			Weights: make([]float64, 0, len(counts)),
		}
		for term := range counts {
			row.Indices = append(row.Indices, index[term])
		}
		sort.Ints(row.Indices)
		for _, idx := range row.Indices {
			tf := float64(counts[space.Vocabulary[idx]])
			row.Weights = append(row.Weights, tf*space.IDF[idx])
		}
		space.Rows[docIdx] = row.Normalized()
	}

	slog.Debug("TF-IDF space built", "vocabularySize", len(space.Vocabulary), "documents", len(documents))
	return space
}

// Scores returns the cosine similarity of the submission row against every
// reference row, in corpus order. Each score lies in [0, 1].
func (s *Space) Scores() []float64 {
	if len(s.Rows) <= 1 {
		return []float64{}
	}

	scores := make([]float64, len(s.Rows)-1)
	for i, row := range s.Rows[1:] {
		scores[i] = Cosine(s.Rows[0], row)
	}
	return scores
}

// smoothIDF is ln((1+n)/(1+df)) + 1. It decreases as df grows and stays
// finite for df == n.
func smoothIDF(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1
}

// terms extracts the vocabulary terms of one document: alphabetic tokens of
// at least minTokenLength letters that are not stopwords, optionally stemmed,
// followed by n-grams over that filtered sequence.
func (v *Vectorizer) terms(text string) []string {
	tokens := v.tokenize(text)
	if len(tokens) == 0 {
		return tokens
	}

	terms := make([]string, 0, len(tokens)*v.maxNgram)
	terms = append(terms, tokens...)
	for n := 2; n <= v.maxNgram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// tokenize breaks text into lower-case alphabetic tokens, dropping short
// words and stopwords.
func (v *Vectorizer) tokenize(text string) []string {
	if text == "" {
		return []string{}
	}

	raw := tokenRegex.FindAllString(strings.ToLower(text), -1)

	filtered := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < v.minTokenLength || v.stopwords.Contains(token) {
			continue
		}
		if v.stem != nil {
			token = v.stem(token)
		}
		filtered = append(filtered, token)
	}

	return filtered
}

// calculateTermCounts computes raw term counts for a slice of terms.
func calculateTermCounts(terms []string) map[string]int {
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	return counts
}
