package detect

import "github.com/chriscorrea/copycheck/internal/phrase"

// Result is the verdict for one reference document.
type Result struct {
	DocName        string         `json:"doc_name"`
	Similarity     float64        `json:"similarity"`
	IsPlagiarized  bool           `json:"is_plagiarized"`
	MatchedPhrases []phrase.Match `json:"matched_phrases"`
}

// SimilarityStats summarises the similarity of every checked reference,
// flagged or not.
type SimilarityStats struct {
	Max float64 `json:"max_similarity"`
	Avg float64 `json:"avg_similarity"`
	Min float64 `json:"min_similarity"`
}

// Stats describes a detection run. Similarity is nil when no references were
// checked.
type Stats struct {
	TotalChecked     int              `json:"total_checked"`
	PlagiarizedCount int              `json:"plagiarized_count"`
	Similarity       *SimilarityStats `json:"similarity"`
}

// Report is the outcome of one detection call.
type Report struct {
	Submission  string   `json:"submission"`
	Threshold   float64  `json:"threshold"`
	Results     []Result `json:"results"`     // all references, similarity descending
	Plagiarized []Result `json:"plagiarized"` // subset of Results above the threshold
	Stats       Stats    `json:"stats"`

	// References and Similarities are in corpus order, aligned with the
	// reference slice passed to Detect.
	References   []string  `json:"references"`
	Similarities []float64 `json:"similarities"`
}

// computeStats derives summary statistics over every score, not only flagged
// ones.
func computeStats(similarities []float64, plagiarized int) Stats {
	stats := Stats{
		TotalChecked:     len(similarities),
		PlagiarizedCount: plagiarized,
	}
	if len(similarities) == 0 {
		return stats
	}

	summary := SimilarityStats{Max: similarities[0], Min: similarities[0]}
	var sum float64
	for _, s := range similarities {
		sum += s
		summary.Max = max(summary.Max, s)
		summary.Min = min(summary.Min, s)
	}
	// clamp guards against the mean drifting outside [min,max] by rounding
	summary.Avg = min(max(sum/float64(len(similarities)), summary.Min), summary.Max)

	stats.Similarity = &summary
	return stats
}
