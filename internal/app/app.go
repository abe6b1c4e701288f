// Package app wires document loading, detection and rendering together for
// the copycheck command line.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chriscorrea/copycheck/internal/detect"
	"github.com/chriscorrea/copycheck/internal/report"
	"github.com/chriscorrea/copycheck/internal/source"
	"github.com/chriscorrea/copycheck/internal/spinner"
)

// Config holds everything a single check or calibration run needs.
type Config struct {
	Submission string   // path, URL or "-" for stdin
	RefsDir    string   // folder of reference documents
	References []string // additional reference paths or URLs
	Threshold  float64
	Detector   detect.Options
	Source     source.Options // HTML selector and include-all switch
	Format     report.Format
	Color      bool
	LabelsPath string // calibrate only: YAML map of reference name to label
	Quiet      bool   // suppress warnings and the spinner
	Debug      bool
	Stderr     io.Writer // defaults to os.Stderr
}

func (c Config) stderr() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}

func (c Config) warnf(format string, args ...any) {
	if c.Quiet {
		return
	}
	fmt.Fprintf(c.stderr(), "Warning: "+format+"\n", args...)
}

// Run checks the submission against the references and returns the
// rendered report.
//
// Processing pipeline:
// 1. read the submission (loadSubmission)
// 2. load the reference corpus (loadReferences)
// 3. detect and render
func Run(ctx context.Context, cfg Config) (string, error) {
	submission, references, err := loadInputs(ctx, cfg)
	if err != nil {
		return "", err
	}

	detector, err := detect.New(cfg.Detector)
	if err != nil {
		return "", fmt.Errorf("invalid detector options: %w", err)
	}

	result, err := detector.Detect(submission, references, cfg.Threshold)
	if err != nil {
		return "", err
	}

	return report.Render(result, submission, report.Options{
		Format: cfg.Format,
		Color:  cfg.Color,
	})
}

func loadInputs(ctx context.Context, cfg Config) (detect.Document, []detect.Document, error) {
	if cfg.Submission == "" {
		return detect.Document{}, nil, fmt.Errorf("no submission provided")
	}
	if err := detect.ValidateThreshold(cfg.Threshold); err != nil {
		return detect.Document{}, nil, err
	}

	// a spinner would interleave with debug log lines
	var spin *spinner.Spinner
	if !cfg.Quiet && !cfg.Debug {
		spin = spinner.ForTerminal(cfg.stderr(), "Reading submission")
	}
	spin.Start(ctx)
	defer spin.Stop()

	submission, err := source.Read(ctx, cfg.Submission, cfg.Source)
	if err != nil {
		return detect.Document{}, nil, fmt.Errorf("failed to read submission: %w", err)
	}

	spin.UpdateMessage("Loading references")
	references, err := loadReferences(ctx, cfg, spin)
	if err != nil {
		return detect.Document{}, nil, err
	}
	if len(references) == 0 {
		cfg.warnf("no reference documents found; nothing to compare against")
	}

	spin.UpdateMessage("Comparing documents")
	slog.Debug("Inputs loaded", "submission", submission.Name, "references", len(references))
	return submission, references, nil
}

// loadReferences reads the reference folder and any extra references.
// Unreadable or blank references are skipped with a warning, as are extra
// references whose name is already taken.
func loadReferences(ctx context.Context, cfg Config, spin *spinner.Spinner) ([]detect.Document, error) {
	var references []detect.Document
	names := make(map[string]bool)

	if cfg.RefsDir != "" {
		docs, err := source.LoadDir(ctx, cfg.RefsDir, source.LoadOptions{
			Options:  cfg.Source,
			Progress: spin.SetProgress,
			Warn: func(path string, err error) {
				cfg.warnf("failed to read reference %q: %v", path, err)
			},
		})
		if err != nil {
			return nil, err
		}
		references = append(references, docs...)
		for _, doc := range docs {
			names[doc.Name] = true
		}
	}

	for _, src := range cfg.References {
		doc, err := source.Read(ctx, src, cfg.Source)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			cfg.warnf("failed to read reference %q: %v", src, err)
			continue
		}
		if isBlank(doc.Content) {
			cfg.warnf("reference %q is empty, skipping", src)
			continue
		}
		if names[doc.Name] {
			cfg.warnf("reference %q has the same name as an earlier reference (%s), skipping", src, doc.Name)
			continue
		}
		names[doc.Name] = true
		references = append(references, doc)
	}

	return references, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
