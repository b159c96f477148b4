package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "LIVECHECK_"

// Config holds all configuration for the application
type Config struct {
	// Target page
	TargetURL      string
	InputSelector  string
	OutputSelector string
	OutputExclude  string

	// Timing budgets
	PageLoad           time.Duration
	PostClearSettle    time.Duration
	TranslationTimeout time.Duration
	Quiescence         time.Duration
	PollInterval       time.Duration
	InterCasePause     time.Duration
	PartialWindow      time.Duration
	TypingDelay        time.Duration

	// Execution settings
	Sessions          int
	Headless          bool
	ChromePath        string
	StrictIsolation   bool
	VerifyIdempotence bool

	// Input and output
	CorpusPath  string
	ReportPath  string
	MetricsFile string
	HistoryDSN  string
	LogLevel    string

	// Paths to ignore when scanning for corpus files
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags. Zero values leave the configured value alone.
type Flags struct {
	Corpus            string
	Filter            string
	Where             string
	URL               string
	Sessions          int
	Headful           bool
	VerifyIdempotence bool
	Report            string
	MetricsFile       string
	HistoryDSN        string
	LogLevel          string
	OpenFailures      bool
	Metadata          bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		TargetURL:          DefaultTargetURL,
		InputSelector:      DefaultInputSelector,
		OutputSelector:     DefaultOutputSelector,
		OutputExclude:      DefaultOutputExclude,
		PageLoad:           DefaultPageLoad,
		PostClearSettle:    DefaultPostClearSettle,
		TranslationTimeout: DefaultTranslationTimeout,
		Quiescence:         DefaultQuiescence,
		PollInterval:       DefaultPollInterval,
		InterCasePause:     DefaultInterCasePause,
		PartialWindow:      DefaultPartialWindow,
		TypingDelay:        DefaultTypingDelay,
		Sessions:           DefaultSessions,
		Headless:           true,
		StrictIsolation:    true,
		ReportPath:         filepath.Join(DefaultReportDir, DefaultReportFile),
		LogLevel:           DefaultLogLevel,
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load builds the configuration from defaults, the optional .env file,
// LIVECHECK_* environment variables and finally the command-line flags.
func Load(flags Flags) (*Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}

	cfg := New()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"URL":             &c.TargetURL,
		"INPUT_SELECTOR":  &c.InputSelector,
		"OUTPUT_SELECTOR": &c.OutputSelector,
		"OUTPUT_EXCLUDE":  &c.OutputExclude,
		"CHROME_PATH":     &c.ChromePath,
		"CORPUS":          &c.CorpusPath,
		"REPORT":          &c.ReportPath,
		"METRICS_FILE":    &c.MetricsFile,
		"HISTORY_DSN":     &c.HistoryDSN,
		"LOG_LEVEL":       &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"PAGE_LOAD":           &c.PageLoad,
		"POST_CLEAR_SETTLE":   &c.PostClearSettle,
		"TRANSLATION_TIMEOUT": &c.TranslationTimeout,
		"QUIESCENCE":          &c.Quiescence,
		"POLL_INTERVAL":       &c.PollInterval,
		"INTER_CASE_PAUSE":    &c.InterCasePause,
		"PARTIAL_WINDOW":      &c.PartialWindow,
		"TYPING_DELAY":        &c.TypingDelay,
	}
	var errs []error
	for key, dst := range durations {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			continue
		}
		*dst = d
	}

	bools := map[string]*bool{
		"HEADLESS":           &c.Headless,
		"STRICT_ISOLATION":   &c.StrictIsolation,
		"VERIFY_IDEMPOTENCE": &c.VerifyIdempotence,
	}
	for key, dst := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			continue
		}
		*dst = b
	}

	if v, ok := lookup(EnvPrefix + "SESSIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSESSIONS: %w", EnvPrefix, err))
		} else {
			c.Sessions = n
		}
	}
	return errors.Join(errs...)
}

func (c *Config) applyFlags(flags Flags) {
	c.Flags = flags

	// Apply flag overrides
	if flags.Corpus != "" {
		c.CorpusPath = flags.Corpus
	}
	if flags.URL != "" {
		c.TargetURL = flags.URL
	}
	if flags.Sessions > 0 {
		c.Sessions = flags.Sessions
	}
	if flags.Headful {
		c.Headless = false
	}
	if flags.VerifyIdempotence {
		c.VerifyIdempotence = true
	}
	if flags.Report != "" {
		c.ReportPath = flags.Report
	}
	if flags.MetricsFile != "" {
		c.MetricsFile = flags.MetricsFile
	}
	if flags.HistoryDSN != "" {
		c.HistoryDSN = flags.HistoryDSN
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
}

// Validate rejects configurations no run could succeed with.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.TargetURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") || (u.Scheme != "file" && u.Host == "") {
		errs = append(errs, fmt.Errorf("target url %q must be an absolute http(s) or file url", c.TargetURL))
	}
	if strings.TrimSpace(c.InputSelector) == "" || strings.TrimSpace(c.OutputSelector) == "" {
		errs = append(errs, errors.New("input and output selectors are required"))
	}

	budgets := []struct {
		name string
		d    time.Duration
	}{
		{"page load", c.PageLoad},
		{"post-clear settle", c.PostClearSettle},
		{"translation timeout", c.TranslationTimeout},
		{"quiescence", c.Quiescence},
		{"poll interval", c.PollInterval},
		{"partial window", c.PartialWindow},
	}
	for _, b := range budgets {
		if b.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", b.name, b.d))
		}
	}
	if c.InterCasePause < 0 || c.TypingDelay < 0 {
		errs = append(errs, errors.New("inter-case pause and typing delay must not be negative"))
	}
	if c.PostClearSettle <= c.Quiescence {
		errs = append(errs, fmt.Errorf("post-clear settle (%s) must exceed quiescence (%s)", c.PostClearSettle, c.Quiescence))
	}
	if c.TranslationTimeout <= c.Quiescence {
		errs = append(errs, fmt.Errorf("translation timeout (%s) must exceed quiescence (%s)", c.TranslationTimeout, c.Quiescence))
	}
	if c.Sessions < 1 {
		errs = append(errs, fmt.Errorf("sessions must be at least 1, got %d", c.Sessions))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// GetReportPath returns the absolute path of the report file so run and
// failures always read and write the same file regardless of cwd.
func (c *Config) GetReportPath() string {
	if abs, err := filepath.Abs(c.ReportPath); err == nil {
		return abs
	}
	return c.ReportPath
}
