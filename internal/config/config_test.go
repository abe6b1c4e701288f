package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") unexpected error: %v", err)
	}

	if cfg.Detection.Threshold != 0.7 {
		t.Errorf("Threshold = %v, want 0.7", cfg.Detection.Threshold)
	}
	if cfg.Detection.MinPhraseWords != 5 || cfg.Detection.MaxPhraseWords != 15 || cfg.Detection.MaxPhrases != 3 {
		t.Errorf("phrase limits = %+v, want 5/15/3", cfg.Detection)
	}
	if cfg.Vectorizer.Language != "indonesian" || cfg.Vectorizer.MaxNgram != 2 || cfg.Vectorizer.MinTokenLength != 3 {
		t.Errorf("Vectorizer = %+v", cfg.Vectorizer)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.ShutdownTimeout != 15*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "copycheck.yaml", `
detection:
  threshold: 0.55
  maxPhrases: 5
vectorizer:
  language: english
  stopwords: [lorem, ipsum]
  maxNgram: 1
server:
  addr: "127.0.0.1:9000"
  readTimeout: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Detection.Threshold != 0.55 {
		t.Errorf("Threshold = %v, want 0.55", cfg.Detection.Threshold)
	}
	if cfg.Detection.MaxPhrases != 5 {
		t.Errorf("MaxPhrases = %d, want 5", cfg.Detection.MaxPhrases)
	}
	// unspecified fields keep their defaults
	if cfg.Detection.MinPhraseWords != 5 {
		t.Errorf("MinPhraseWords = %d, want default 5", cfg.Detection.MinPhraseWords)
	}
	if cfg.Vectorizer.MaxNgram != 1 {
		t.Errorf("MaxNgram = %d, want 1", cfg.Vectorizer.MaxNgram)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}

	opts, err := cfg.DetectorOptions()
	if err != nil {
		t.Fatalf("DetectorOptions() unexpected error: %v", err)
	}
	for _, w := range []string{"the", "lorem", "ipsum"} {
		if !opts.Vectorizer.Stopwords.Contains(w) {
			t.Errorf("stopwords missing %q", w)
		}
	}
	if opts.Phrases.MaxResults != 5 {
		t.Errorf("Phrases.MaxResults = %d, want 5", opts.Phrases.MaxResults)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	tests := []struct {
		name        string
		content     string
		wantInvalid bool
	}{
		{"malformed yaml", "detection: [", false},
		{"threshold zero", "detection: {threshold: 0}", true},
		{"threshold one", "detection: {threshold: 1}", true},
		{"max below min", "detection: {minPhraseWords: 6, maxPhraseWords: 4}", true},
		{"ngram too large", "vectorizer: {maxNgram: 4}", true},
		{"bad log format", "logging: {format: xml}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "bad.yaml", tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load() expected error for %q", tt.content)
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.wantInvalid {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = %v, want %v (err: %v)", got, tt.wantInvalid, err)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COPYCHECK_THRESHOLD", "0.42")
	t.Setenv("COPYCHECK_LANGUAGE", "none")
	t.Setenv("COPYCHECK_LOGGING_LEVEL", "debug")
	t.Setenv("COPYCHECK_STOPWORDS", "foo,bar")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Detection.Threshold != 0.42 {
		t.Errorf("Threshold = %v, want 0.42", cfg.Detection.Threshold)
	}
	if cfg.Vectorizer.Language != "none" {
		t.Errorf("Language = %q, want none", cfg.Vectorizer.Language)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Vectorizer.Stopwords) != 2 {
		t.Errorf("Stopwords = %v, want [foo bar]", cfg.Vectorizer.Stopwords)
	}

	t.Setenv("COPYCHECK_THRESHOLD", "high")
	if _, err := Load(""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() with non-numeric threshold error = %v, want ErrInvalidConfig", err)
	}
}

func TestEnvPhraseWords(t *testing.T) {
	tests := []struct {
		name    string
		min     string
		max     string
		wantMin int
		wantMax int
		wantErr bool
	}{
		{name: "min above default max", min: "20", wantMin: 20, wantMax: 20},
		{name: "min below default max", min: "4", wantMin: 4, wantMax: 15},
		{name: "both set", min: "6", max: "10", wantMin: 6, wantMax: 10},
		{name: "explicit max below min", min: "8", max: "6", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("COPYCHECK_MIN_PHRASE_WORDS", tt.min)
			t.Setenv("COPYCHECK_MAX_PHRASE_WORDS", tt.max)

			cfg, err := Load("")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if cfg.Detection.MinPhraseWords != tt.wantMin || cfg.Detection.MaxPhraseWords != tt.wantMax {
				t.Errorf("phrase words = %d..%d, want %d..%d", cfg.Detection.MinPhraseWords, cfg.Detection.MaxPhraseWords, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, EnvFile, "COPYCHECK_STEMMER=english\n")
	t.Cleanup(func() { os.Unsetenv("COPYCHECK_STEMMER") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Vectorizer.Stemmer != "english" {
		t.Errorf("Stemmer = %q, want english from %s", cfg.Vectorizer.Stemmer, EnvFile)
	}
}

func TestDetectorOptionsUnknownLanguage(t *testing.T) {
	cfg := Default()
	cfg.Vectorizer.Language = "klingon"
	if _, err := cfg.DetectorOptions(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("DetectorOptions() error = %v, want ErrInvalidConfig", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
