package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/chriscorrea/copycheck/internal/app"
	"github.com/chriscorrea/copycheck/internal/config"
	"github.com/chriscorrea/copycheck/internal/detect"
	"github.com/chriscorrea/copycheck/internal/metrics"
	"github.com/chriscorrea/copycheck/internal/report"
	"github.com/chriscorrea/copycheck/internal/server"
	"github.com/chriscorrea/copycheck/internal/source"
)

// loadSettings reads the config file and applies flag overrides on top.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Detection.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("min-words") {
		cfg.Detection.MinPhraseWords, _ = flags.GetInt("min-words")
		cfg.Detection.MaxPhraseWords = max(cfg.Detection.MaxPhraseWords, cfg.Detection.MinPhraseWords)
	}
	if flags.Changed("max-phrases") {
		cfg.Detection.MaxPhrases, _ = flags.GetInt("max-phrases")
	}
	if flags.Changed("language") {
		cfg.Vectorizer.Language, _ = flags.GetString("language")
	}
	if flags.Changed("stemmer") {
		cfg.Vectorizer.Stemmer, _ = flags.GetString("stemmer")
	}
	if flags.Changed("addr") {
		cfg.Server.Addr, _ = flags.GetString("addr")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildConfig constructs an app.Config from settings, flags and arguments.
func buildConfig(cmd *cobra.Command, args []string, settings *config.Config) (app.Config, error) {
	refsDir, _ := cmd.Flags().GetString("refs")
	selector, _ := cmd.Flags().GetString("selector")
	includeAll, _ := cmd.Flags().GetBool("include-all")
	stripBoilerplate, _ := cmd.Flags().GetBool("strip-boilerplate")
	textFlag, _ := cmd.Flags().GetBool("text")
	jsonFlag, _ := cmd.Flags().GetBool("json")
	quiet, _ := cmd.Flags().GetBool("quiet")
	debug, _ := cmd.Flags().GetBool("debug")

	var format report.Format
	switch {
	case textFlag:
		format = report.Text
	case jsonFlag:
		format = report.JSON
	default:
		format = report.Markdown
	}

	detectorOpts, err := settings.DetectorOptions()
	if err != nil {
		return app.Config{}, err
	}

	// first argument is the submission, the rest are extra references;
	// no arguments means the submission comes from stdin
	submission := "-"
	var references []string
	if len(args) > 0 {
		submission = args[0]
		references = args[1:]
	}

	return app.Config{
		Submission: submission,
		RefsDir:    refsDir,
		References: references,
		Threshold:  settings.Detection.Threshold,
		Detector:   detectorOpts,
		Source:     source.Options{Selector: selector, IncludeAll: includeAll, StripBoilerplate: stripBoilerplate},
		Format:     format,
		Color:      format == report.Text && report.UseColor(os.Stdout),
		Quiet:      quiet,
		Debug:      debug,
	}, nil
}

// setupLogger configures the default slog logger. --debug always wins.
func setupLogger(level slog.Level, format string, debug bool) {
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// prepare loads settings, configures logging and builds the app config.
func prepare(cmd *cobra.Command, args []string) (app.Config, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return app.Config{}, fmt.Errorf("configuration error: %w", err)
	}

	debug, _ := cmd.Flags().GetBool("debug")
	setupLogger(config.ParseLevel(settings.Logging.Level), settings.Logging.Format, debug)

	cfg, err := buildConfig(cmd, args, settings)
	if err != nil {
		return app.Config{}, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "copycheck [submission] [references...]",
	Short: "Detect plagiarism by comparing a document against a reference corpus",
	Long: `Copycheck compares a submitted document with reference documents using TF-IDF
cosine similarity and lists the phrases the submission shares with every
reference above the similarity threshold.

Documents may be .txt, .md, .pdf, .html or .htm files, URLs, or standard input.

Examples:
  copycheck essay.txt --refs corpus/
  copycheck essay.pdf --refs corpus/ --threshold 0.5 --json
  copycheck essay.txt source1.txt https://example.com/article
  cat essay.txt | copycheck --refs corpus/`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := prepare(cmd, args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := app.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("copycheck failed: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate submission --refs DIR --labels labels.yaml",
	Short: "Find the threshold that best separates labelled sources from other references",
	Long: `Calibrate scores the submission against every reference and sweeps
thresholds from 0.10 to 0.95, reporting the one with the best F1 score.

The labels file is YAML mapping reference file names to true (a real source
of the submission) or false:

  copy_of_essay.txt: true
  unrelated.txt: false`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := prepare(cmd, args)
		if err != nil {
			return err
		}
		cfg.LabelsPath, _ = cmd.Flags().GetString("labels")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := app.Calibrate(ctx, cfg)
		if err != nil {
			return fmt.Errorf("calibration failed: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve --refs DIR",
	Short: "Serve plagiarism detection over HTTP",
	Long: `Serve loads the reference folder once and answers detection requests:

  POST /api/v1/detect          JSON {"submission": {"name", "content"}, "references"?: [...], "threshold"?: 0.7}
  POST /api/v1/detect/upload   multipart form with a "file" part and optional "threshold"
  GET  /health
  GET  /metrics                Prometheus metrics`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// request logs are info level, so serve never logs less than that
		debug, _ := cmd.Flags().GetBool("debug")
		setupLogger(min(config.ParseLevel(settings.Logging.Level), slog.LevelInfo), settings.Logging.Format, debug)
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}

		detectorOpts, err := settings.DetectorOptions()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		detector, err := detect.New(detectorOpts)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		refsDir, _ := cmd.Flags().GetString("refs")
		selector, _ := cmd.Flags().GetString("selector")
		includeAll, _ := cmd.Flags().GetBool("include-all")
		stripBoilerplate, _ := cmd.Flags().GetBool("strip-boilerplate")
		sourceOpts := source.Options{Selector: selector, IncludeAll: includeAll, StripBoilerplate: stripBoilerplate}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var references []detect.Document
		if refsDir != "" {
			references, err = source.LoadDir(ctx, refsDir, source.LoadOptions{
				Options: sourceOpts,
				Warn: func(path string, err error) {
					slog.Warn("Skipping reference", "path", path, "error", err)
				},
			})
			if err != nil {
				return err
			}
		}
		slog.Info("Reference corpus loaded", "dir", refsDir, "documents", len(references))

		s := server.New(settings.Server, detector, references, settings.Detection.Threshold, sourceOpts, metrics.New())
		srv, errc := server.StartServer(s.Router(), settings.Server)

		select {
		case <-ctx.Done():
		case err := <-errc:
			if err != nil {
				return err
			}
		}
		return server.ShutdownServer(srv, settings.Server.ShutdownTimeout)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to a YAML config file")
	flags.StringP("refs", "r", "", "Folder of reference documents")
	flags.Float64P("threshold", "t", detect.DefaultThreshold, "Similarity above which a reference is flagged, between 0 and 1")
	flags.String("language", "", "Stopword language: indonesian (default), english or none")
	flags.String("stemmer", "", "Stem tokens with a snowball stemmer (e.g. english)")
	flags.Int("min-words", 0, "Minimum words in a matched phrase (default 5)")
	flags.Int("max-phrases", 0, "Matched phrases reported per flagged reference (default 3)")
	flags.StringP("selector", "s", "", "CSS selector for HTML documents")
	flags.BoolP("include-all", "i", false, "Include all HTML content without readability filtering")
	flags.BoolP("strip-boilerplate", "b", false, "Drop cover pages, page numbers and copyright notices before comparing")
	flags.BoolP("quiet", "q", false, "Suppress warnings and progress output")
	flags.BoolP("debug", "D", false, "Enable debug logging")
	_ = flags.MarkHidden("debug")

	// output format flags
	flags.Bool("md", false, "Output in Markdown format (default)")
	flags.Bool("text", false, "Output in plain text format")
	flags.Bool("json", false, "Output in JSON format")
	rootCmd.MarkFlagsMutuallyExclusive("md", "text", "json")

	calibrateCmd.Flags().StringP("labels", "l", "", "YAML file mapping reference names to true/false")
	_ = calibrateCmd.MarkFlagRequired("labels")

	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")

	rootCmd.AddCommand(calibrateCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
