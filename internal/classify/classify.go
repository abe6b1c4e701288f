// Package classify recognises boilerplate paragraphs in academic documents:
// cover pages, running headers and footers, page numbers, copyright notices
// and bibliography furniture. Stripping them keeps two theses from the same
// faculty from looking alike just because they share a title page template.
package classify

import (
	"math"
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

// boilerplateTerms holds English snowball stems and Indonesian words (which
// snowball cannot stem) typical of document furniture rather than prose.
var boilerplateTerms = map[string]struct{}{
	// publishing and document structure
	"appendix":  {},
	"chapter":   {},
	"content":   {},
	"edit":      {},
	"figur":     {},
	"page":      {},
	"publish":   {},
	"tabl":      {},
	"thesi":     {},
	"isbn":      {},
	"doi":       {},
	"http":      {},
	"https":     {},
	"www":       {},
	"copyright": {},
	"right":     {},
	"reserv":    {},
	"permiss":   {},
	"reproduc":  {},

	// academic front matter
	"univers":    {},
	"faculti":    {},
	"depart":     {},
	"supervisor": {},
	"submit":     {},
	"student":    {},

	// Indonesian equivalents
	"halaman":     {},
	"hal":         {},
	"bab":         {},
	"lampiran":    {},
	"daftar":      {},
	"isi":         {},
	"pustaka":     {},
	"gambar":      {},
	"tabel":       {},
	"skripsi":     {},
	"tesis":       {},
	"universitas": {},
	"fakultas":    {},
	"jurusan":     {},
	"nim":         {},
	"dosen":       {},
	"pembimbing":  {},
	"hak":         {},
	"cipta":       {},
	"dilindungi":  {},
}

var (
	tokenPattern     = regexp.MustCompile(`[a-z]+`)
	paragraphPattern = regexp.MustCompile(`\n\s*\n`)
)

// Classifier decides whether a paragraph is boilerplate. The zero value is
// ready to use.
type Classifier struct{}

// New returns a Classifier.
func New() *Classifier {
	return &Classifier{}
}

// IsBoilerplate reports whether paragraph, at position index of total
// paragraphs, is document furniture. Paragraphs without any letters (page
// numbers, separators) always are. Otherwise the share of boilerplate terms
// is compared against a threshold that is lowest at the start and end of the
// document, where cover pages and reference lists sit.
func (c *Classifier) IsBoilerplate(paragraph string, index, total int) bool {
	if total <= 0 || index < 0 || index >= total {
		return false
	}

	tokens := tokenPattern.FindAllString(strings.ToLower(paragraph), -1)
	if len(tokens) == 0 {
		return true
	}

	hits := 0
	for _, token := range tokens {
		if _, ok := boilerplateTerms[token]; ok {
			hits++
			continue
		}
		if stem, err := snowball.Stem(token, "english", true); err == nil {
			if _, ok := boilerplateTerms[stem]; ok {
				hits++
			}
		}
	}

	return float64(hits)/float64(len(tokens)) > threshold(index, total)
}

// threshold rises from 0.1 at the document edges to 0.33 in the middle.
// Short documents get a flat 0.5 so real content is never dropped.
func threshold(index, total int) float64 {
	if total <= 3 {
		return 0.5
	}

	position := float64(index) / float64(total-1)
	centrality := 1.0 - math.Abs(2.0*position-1.0)

	const edge, middle = 0.1, 0.33
	return edge + (middle-edge)*centrality
}

// Strip removes boilerplate paragraphs from text, where paragraphs are
// separated by blank lines. It returns the remaining text and the number of
// paragraphs removed. Text that would be stripped entirely is returned
// unchanged.
func (c *Classifier) Strip(text string) (string, int) {
	paragraphs := paragraphPattern.Split(strings.TrimSpace(text), -1)

	kept := make([]string, 0, len(paragraphs))
	for i, p := range paragraphs {
		if !c.IsBoilerplate(p, i, len(paragraphs)) {
			kept = append(kept, strings.TrimSpace(p))
		}
	}

	if len(kept) == 0 {
		return text, 0
	}
	return strings.Join(kept, "\n\n"), len(paragraphs) - len(kept)
}
