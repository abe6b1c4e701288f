package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/chriscorrea/copycheck/internal/detect"
)

const barWidth = 30

// chart draws one bar per reference in corpus order, with a tick at the
// threshold and a marker on flagged rows.
func chart(r *detect.Report) string {
	if len(r.References) == 0 {
		return ""
	}

	width := 0
	for _, name := range r.References {
		width = max(width, len([]rune(name)))
	}
	tick := int(math.Round(r.Threshold * barWidth))

	var b strings.Builder
	for i, name := range r.References {
		sim := r.Similarities[i]
		filled := int(math.Round(sim * barWidth))

		var bar strings.Builder
		for j := 0; j < barWidth; j++ {
			switch {
			case j < filled:
				bar.WriteString("█")
			case j == tick:
				bar.WriteString("|")
			default:
				bar.WriteString("·")
			}
		}

		marker := ""
		if detect.Exceeds(sim, r.Threshold) {
			marker = " <"
		}
		pad := strings.Repeat(" ", width-len([]rune(name)))
		fmt.Fprintf(&b, "%s%s %s %7s%s\n", name, pad, bar.String(), Percent(sim), marker)
	}
	return b.String()
}
