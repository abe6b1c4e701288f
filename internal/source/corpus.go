package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/chriscorrea/copycheck/internal/detect"
)

// LoadOptions controls LoadDir.
type LoadOptions struct {
	Options

	// Workers bounds concurrent file reads; zero means GOMAXPROCS.
	Workers int
	// Progress, if set, is called after each file with the number done so far.
	Progress func(done, total int)
	// Warn, if set, receives files that were skipped because they failed to read.
	Warn func(path string, err error)

	// Progress and Warn may be called from several goroutines at once.
}

// LoadDir reads every supported document directly inside dir, in file-name
// order. Unsupported files and subdirectories are ignored. Documents whose
// content is blank are dropped, and unreadable files are reported through
// opts.Warn and skipped, so an empty folder yields an empty corpus, not an
// error.
func LoadDir(ctx context.Context, dir string, opts LoadOptions) ([]detect.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference folder %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !Supported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	slog.Debug("Loading reference folder", "dir", dir, "candidates", len(paths))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// each slot is written by exactly one goroutine, so order follows paths
	loaded := make([]*detect.Document, len(paths))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc, err := ReadFile(p, opts.Options)
			if err != nil {
				slog.Debug("Skipping unreadable reference", "path", p, "error", err)
				if opts.Warn != nil {
					opts.Warn(p, err)
				}
			} else if strings.TrimSpace(doc.Content) != "" {
				loaded[i] = &doc
			}

			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), len(paths))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading reference folder %q: %w", dir, err)
	}

	documents := make([]detect.Document, 0, len(loaded))
	for _, doc := range loaded {
		if doc != nil {
			documents = append(documents, *doc)
		}
	}

	slog.Debug("Reference folder loaded", "dir", dir, "documents", len(documents))
	return documents, nil
}
