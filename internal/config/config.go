// Package config loads copycheck settings from an optional YAML file,
// a .env file and COPYCHECK_* environment variables, in that order of
// increasing precedence. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/chriscorrea/copycheck/internal/detect"
	"github.com/chriscorrea/copycheck/internal/normalize"
	"github.com/chriscorrea/copycheck/internal/phrase"
	"github.com/chriscorrea/copycheck/internal/tfidf"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvFile is read, if present, before environment overrides are applied.
// Variables already set in the process environment win.
const EnvFile = ".env"

// Config is the top-level configuration.
type Config struct {
	Detection  DetectionConfig  `yaml:"detection"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DetectionConfig holds the flagging threshold and phrase extraction limits.
type DetectionConfig struct {
	Threshold      float64 `yaml:"threshold"`
	MinPhraseWords int     `yaml:"minPhraseWords"`
	MaxPhraseWords int     `yaml:"maxPhraseWords"`
	MaxPhrases     int     `yaml:"maxPhrases"`
}

// VectorizerConfig controls tokenization and vocabulary building.
type VectorizerConfig struct {
	Language       string   `yaml:"language"`
	Stopwords      []string `yaml:"stopwords"`
	MinTokenLength int      `yaml:"minTokenLength"`
	MaxNgram       int      `yaml:"maxNgram"`
	Stemmer        string   `yaml:"stemmer"`
}

// ServerConfig holds settings for `copycheck serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RateLimitRPS    float64       `yaml:"rateLimitRPS"` // 0 disables rate limiting
	MaxUploadBytes  int64         `yaml:"maxUploadBytes"`
	MaxConcurrent   int           `yaml:"maxConcurrentDetections"`
}

// LoggingConfig controls slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Detection: DetectionConfig{
			Threshold:      detect.DefaultThreshold,
			MinPhraseWords: phrase.DefaultMinWords,
			MaxPhraseWords: phrase.DefaultMaxWords,
			MaxPhrases:     phrase.DefaultMaxResults,
		},
		Vectorizer: VectorizerConfig{
			Language:       normalize.Indonesian,
			MinTokenLength: 3,
			MaxNgram:       2,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimitRPS:    5,
			MaxUploadBytes:  50 * 1024 * 1024,
			MaxConcurrent:   4,
		},
		Logging: LoggingConfig{
			Level:  "error",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := loadEnvFile(EnvFile); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	slog.Debug("Loaded environment file", "path", path)
	return nil
}

// applyEnvOverrides reads COPYCHECK_* variables. Malformed numbers are an
// error rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	floatVar := func(name string, dst *float64) error {
		if v := os.Getenv(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, name, v)
			}
			*dst = f
		}
		return nil
	}
	intVar := func(name string, dst *int) error {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, name, v)
			}
			*dst = n
		}
		return nil
	}

	for _, err := range []error{
		floatVar("COPYCHECK_THRESHOLD", &cfg.Detection.Threshold),
		intVar("COPYCHECK_MIN_PHRASE_WORDS", &cfg.Detection.MinPhraseWords),
		intVar("COPYCHECK_MAX_PHRASE_WORDS", &cfg.Detection.MaxPhraseWords),
		intVar("COPYCHECK_MAX_PHRASES", &cfg.Detection.MaxPhrases),
		floatVar("COPYCHECK_RATE_LIMIT_RPS", &cfg.Server.RateLimitRPS),
	} {
		if err != nil {
			return err
		}
	}
	// a larger minimum raises the window ceiling unless it was set explicitly
	if os.Getenv("COPYCHECK_MIN_PHRASE_WORDS") != "" && os.Getenv("COPYCHECK_MAX_PHRASE_WORDS") == "" {
		cfg.Detection.MaxPhraseWords = max(cfg.Detection.MaxPhraseWords, cfg.Detection.MinPhraseWords)
	}

	if v := os.Getenv("COPYCHECK_LANGUAGE"); v != "" {
		cfg.Vectorizer.Language = v
	}
	if v := os.Getenv("COPYCHECK_STOPWORDS"); v != "" {
		cfg.Vectorizer.Stopwords = append(cfg.Vectorizer.Stopwords, strings.Split(v, ",")...)
	}
	if v := os.Getenv("COPYCHECK_STEMMER"); v != "" {
		cfg.Vectorizer.Stemmer = v
	}
	if v := os.Getenv("COPYCHECK_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("COPYCHECK_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COPYCHECK_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// Validate checks value ranges. Language and stemmer names are checked when
// the detector is built.
func (c *Config) Validate() error {
	if err := detect.ValidateThreshold(c.Detection.Threshold); err != nil {
		return fmt.Errorf("%w: detection.threshold: %v", ErrInvalidConfig, err)
	}
	d := c.Detection
	switch {
	case d.MinPhraseWords < 1:
		return fmt.Errorf("%w: detection.minPhraseWords must be at least 1, got %d", ErrInvalidConfig, d.MinPhraseWords)
	case d.MaxPhraseWords < d.MinPhraseWords:
		return fmt.Errorf("%w: detection.maxPhraseWords (%d) is below minPhraseWords (%d)", ErrInvalidConfig, d.MaxPhraseWords, d.MinPhraseWords)
	case d.MaxPhrases < 1:
		return fmt.Errorf("%w: detection.maxPhrases must be at least 1, got %d", ErrInvalidConfig, d.MaxPhrases)
	}

	v := c.Vectorizer
	if v.MaxNgram < 1 || v.MaxNgram > 3 {
		return fmt.Errorf("%w: vectorizer.maxNgram must be 1, 2 or 3, got %d", ErrInvalidConfig, v.MaxNgram)
	}
	if v.MinTokenLength < 1 {
		return fmt.Errorf("%w: vectorizer.minTokenLength must be at least 1, got %d", ErrInvalidConfig, v.MinTokenLength)
	}

	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("%w: server.rateLimitRPS cannot be negative", ErrInvalidConfig)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: server.maxUploadBytes must be positive", ErrInvalidConfig)
	}
	if c.Server.MaxConcurrent < 1 {
		return fmt.Errorf("%w: server.maxConcurrentDetections must be at least 1", ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// DetectorOptions resolves the stopword language and returns options for
// detect.New.
func (c *Config) DetectorOptions() (detect.Options, error) {
	stopwords, err := normalize.Stopwords(c.Vectorizer.Language)
	if err != nil {
		return detect.Options{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(c.Vectorizer.Stopwords) > 0 {
		stopwords = stopwords.With(c.Vectorizer.Stopwords...)
	}

	return detect.Options{
		Vectorizer: tfidf.Options{
			Stopwords:      stopwords,
			MinTokenLength: c.Vectorizer.MinTokenLength,
			MaxNgram:       c.Vectorizer.MaxNgram,
			Stemmer:        c.Vectorizer.Stemmer,
		},
		Phrases: phrase.Options{
			MinWords:   c.Detection.MinPhraseWords,
			MaxWords:   c.Detection.MaxPhraseWords,
			MaxResults: c.Detection.MaxPhrases,
		},
	}, nil
}

// ParseLevel maps a level name to slog. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
