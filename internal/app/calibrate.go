package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chriscorrea/copycheck/internal/detect"
	"github.com/chriscorrea/copycheck/internal/report"
)

// CalibrationResult is the output of Calibrate.
type CalibrationResult struct {
	detect.Calibration
	Labelled   int      `json:"labelled"`
	Unlabelled []string `json:"unlabelled,omitempty"`
}

// Calibrate scores the submission against the references and searches for
// the threshold that best separates the references labelled as sources from
// the rest.
func Calibrate(ctx context.Context, cfg Config) (string, error) {
	labels, err := loadLabels(cfg.LabelsPath)
	if err != nil {
		return "", err
	}

	if cfg.Threshold == 0 {
		cfg.Threshold = detect.DefaultThreshold
	}
	submission, references, err := loadInputs(ctx, cfg)
	if err != nil {
		return "", err
	}

	detector, err := detect.New(cfg.Detector)
	if err != nil {
		return "", fmt.Errorf("invalid detector options: %w", err)
	}
	// phrases are irrelevant to the sweep, so only the scores are computed
	scores := detector.Score(submission, references)

	var similarities []float64
	var truth []bool
	result := CalibrationResult{}
	seen := make(map[string]bool, len(labels))
	for i, ref := range references {
		label, ok := labels[ref.Name]
		if !ok {
			result.Unlabelled = append(result.Unlabelled, ref.Name)
			continue
		}
		seen[ref.Name] = true
		similarities = append(similarities, scores[i])
		truth = append(truth, label)
	}
	for _, name := range sortedKeys(labels) {
		if !seen[name] {
			cfg.warnf("label for %q matches no reference document", name)
		}
	}
	if len(similarities) == 0 {
		return "", fmt.Errorf("no reference document has a label in %s", cfg.LabelsPath)
	}

	result.Calibration, err = detect.CalibrateThreshold(similarities, truth)
	if err != nil {
		return "", err
	}
	result.Labelled = len(similarities)

	return formatCalibration(result, cfg.Format)
}

// loadLabels reads a YAML mapping of reference document name to a boolean
// saying whether it is a true source of the submission.
func loadLabels(path string) (map[string]bool, error) {
	if path == "" {
		return nil, fmt.Errorf("no labels file provided")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading labels file %s: %w", path, err)
	}
	var labels map[string]bool
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("parsing labels file %s: %w", path, err)
	}
	return labels, nil
}

func formatCalibration(r CalibrationResult, format report.Format) (string, error) {
	if format == report.JSON {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode calibration: %w", err)
		}
		return string(data) + "\n", nil
	}

	var b strings.Builder
	if format == report.Markdown {
		b.WriteString("# Threshold calibration\n\n")
	}
	fmt.Fprintf(&b, "Optimal threshold: %.2f\n", r.Threshold)
	fmt.Fprintf(&b, "F1: %.4f (precision %.4f, recall %.4f)\n", r.F1, r.Precision, r.Recall)
	fmt.Fprintf(&b, "Labelled references: %d\n", r.Labelled)
	if len(r.Unlabelled) > 0 {
		fmt.Fprintf(&b, "Unlabelled references ignored: %s\n", strings.Join(r.Unlabelled, ", "))
	}
	return b.String(), nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
