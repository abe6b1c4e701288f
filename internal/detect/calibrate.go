package detect

import (
	"fmt"
	"math"
)

// Calibration sweep bounds.
const (
	calibrationStart = 0.10
	calibrationStep  = 0.05
	calibrationSteps = 18 // 0.10 .. 0.95
)

// Calibration is the outcome of CalibrateThreshold.
type Calibration struct {
	Threshold float64 `json:"threshold"`
	F1        float64 `json:"f1"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// CalibrateThreshold sweeps thresholds from 0.10 to 0.95 in steps of 0.05 and
// returns the one with the highest F1 score against labels (true means the
// reference really is a plagiarism source). Predictions use the same strict
// rule as Detect. When no threshold reaches a positive F1 the default
// threshold is returned with F1 0.
func CalibrateThreshold(similarities []float64, labels []bool) (Calibration, error) {
	if len(similarities) != len(labels) {
		return Calibration{}, fmt.Errorf("got %d similarities but %d labels", len(similarities), len(labels))
	}

	best := Calibration{Threshold: DefaultThreshold}
	for step := 0; step < calibrationSteps; step++ {
		threshold := math.Round((calibrationStart+calibrationStep*float64(step))*100) / 100

		var tp, fp, fn int
		for i, s := range similarities {
			predicted := Exceeds(s, threshold)
			switch {
			case predicted && labels[i]:
				tp++
			case predicted && !labels[i]:
				fp++
			case !predicted && labels[i]:
				fn++
			}
		}

		precision := ratio(tp, tp+fp)
		recall := ratio(tp, tp+fn)
		var f1 float64
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		if f1 > best.F1 {
			best = Calibration{Threshold: threshold, F1: f1, Precision: precision, Recall: recall}
		}
	}

	return best, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
