package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Extraction  ExtractionConfig `toml:"extraction"`
	Classifier  ClassifierConfig `toml:"classifier"`
	Chat        ChatConfig       `toml:"chat"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	Janitor     JanitorConfig    `toml:"janitor"`
	Metrics     MetricsConfig    `toml:"metrics"`
}

type ServerConfig struct {
	Port           int      `toml:"port"`
	Host           string   `toml:"host"`
	AllowedOrigins []string `toml:"allowed_origins"` // CORS origins, "*" allows all
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
	Blob   BlobConfig   `toml:"blob"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
	InMemory       bool   `toml:"in_memory"`        // Run without a directory (tests, MCP dry runs)
}

// BlobConfig holds the filesystem location for raw uploaded PDFs
type BlobConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// ExtractionConfig bounds the PDF extraction worker pool
type ExtractionConfig struct {
	Workers        int    `toml:"workers"`          // Concurrent extractions
	Timeout        string `toml:"timeout"`          // Per-document deadline, e.g. "60s"
	MinUploadBytes int64  `toml:"min_upload_bytes"` // Smaller files are rejected as invalid uploads
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
}

// ClassifierConfig points at an optional document-type rule table override
type ClassifierConfig struct {
	RulesFile string `toml:"rules_file"` // Empty uses the embedded rules.yaml
}

// ChatConfig bounds the context handed to the generative model
type ChatConfig struct {
	Provider             string `toml:"provider"`               // "gemini" or "claude"
	MemberContextCap     int    `toml:"member_context_cap"`     // Member summaries included in context
	DocumentContextCap   int    `toml:"document_context_cap"`   // Documents excerpted in context
	DocumentExcerptChars int    `toml:"document_excerpt_chars"` // Characters per document excerpt
	ContextCeiling       int    `toml:"context_ceiling"`        // Hard cap on context characters
	ModelTimeout         string `toml:"model_timeout"`          // Deadline for a single model call
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey          string  `toml:"api_key"`
	Model           string  `toml:"model"`
	Timeout         string  `toml:"timeout"`
	RateLimit       string  `toml:"rate_limit"` // Minimum interval between requests, e.g. "4s"
	Temperature     float32 `toml:"temperature"`
	TopP            float32 `toml:"top_p"`
	MaxOutputTokens int32   `toml:"max_output_tokens"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// JanitorConfig schedules the orphan blob sweep
type JanitorConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format (5 fields)
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:           8080,
			Host:           "localhost",
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/db",
			},
			Blob: BlobConfig{
				Dir: "./uploads",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Extraction: ExtractionConfig{
			Workers:        4,
			Timeout:        "60s",
			MinUploadBytes: 1024,             // 1 KB - smaller files are not real PDFs
			MaxUploadBytes: 50 * 1024 * 1024, // 50 MB
		},
		Chat: ChatConfig{
			Provider:             "gemini",
			MemberContextCap:     50,
			DocumentContextCap:   10,
			DocumentExcerptChars: 3000,
			ContextCeiling:       25000,
			ModelTimeout:         "30s",
		},
		Gemini: GeminiConfig{
			Model:           "gemini-2.0-flash",
			Timeout:         "30s",
			RateLimit:       "4s", // 15 RPM free tier
			Temperature:     0.7,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
		Claude: ClaudeConfig{
			Model:       "claude-3-5-haiku-latest",
			MaxTokens:   2048,
			Timeout:     "30s",
			Temperature: 0.7,
		},
		Janitor: JanitorConfig{
			Enabled:  true,
			Schedule: "0 3 * * *", // Daily at 03:00
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("KINTARI_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("KINTARI_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("KINTARI_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		if list := splitList(origins); len(list) > 0 {
			config.Server.AllowedOrigins = list
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("KINTARI_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if uploadDir := os.Getenv("UPLOAD_DIR"); uploadDir != "" {
		config.Storage.Blob.Dir = uploadDir
	}
	if blobDir := os.Getenv("KINTARI_BLOB_DIR"); blobDir != "" {
		config.Storage.Blob.Dir = blobDir
	}

	// Logging configuration
	if level := os.Getenv("KINTARI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("KINTARI_LOG_OUTPUT"); output != "" {
		if list := splitList(output); len(list) > 0 {
			config.Logging.Output = list
		}
	}

	// Extraction configuration
	if workers := os.Getenv("KINTARI_EXTRACTION_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.Extraction.Workers = w
		}
	}
	if timeout := os.Getenv("KINTARI_EXTRACTION_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Extraction.Timeout = timeout
		}
	}

	// Classifier configuration
	if rules := os.Getenv("KINTARI_CLASSIFIER_RULES_FILE"); rules != "" {
		config.Classifier.RulesFile = rules
	}

	// Chat configuration
	if provider := os.Getenv("KINTARI_CHAT_PROVIDER"); provider != "" {
		config.Chat.Provider = provider
	}
	if timeout := os.Getenv("KINTARI_CHAT_MODEL_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Chat.ModelTimeout = timeout
		}
	}

	// Gemini configuration (GEMINI_API_KEY kept for existing deployments)
	if apiKey := os.Getenv("KINTARI_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("KINTARI_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if rateLimit := os.Getenv("KINTARI_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}
	if temperature := os.Getenv("KINTARI_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("KINTARI_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("KINTARI_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}

	// Janitor configuration
	if enabled := os.Getenv("KINTARI_JANITOR_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Janitor.Enabled = e
		}
	}
	if schedule := os.Getenv("KINTARI_JANITOR_SCHEDULE"); schedule != "" {
		config.Janitor.Schedule = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
// Flags have the highest priority and override both config file and environment variables
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	if c.Extraction.Workers < 1 {
		return fmt.Errorf("extraction.workers must be at least 1, got %d", c.Extraction.Workers)
	}
	extractionTimeout, err := time.ParseDuration(c.Extraction.Timeout)
	if err != nil {
		return fmt.Errorf("invalid extraction.timeout %q: %w", c.Extraction.Timeout, err)
	}
	if _, err := time.ParseDuration(c.Chat.ModelTimeout); err != nil {
		return fmt.Errorf("invalid chat.model_timeout %q: %w", c.Chat.ModelTimeout, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Chat.Provider)) {
	case "gemini", "claude", "", "none":
	default:
		return fmt.Errorf("chat.provider must be gemini, claude or none, got %q", c.Chat.Provider)
	}
	if c.Janitor.Enabled {
		gap, err := ShortestScheduleGap(c.Janitor.Schedule)
		if err != nil {
			return fmt.Errorf("invalid janitor.schedule: %w", err)
		}
		// An upload holds an unreferenced blob for up to the extraction timeout,
		// and the janitor deletes on the second consecutive sighting
		if gap <= extractionTimeout {
			return fmt.Errorf("janitor.schedule %q runs every %s, must be longer than extraction.timeout %s",
				c.Janitor.Schedule, gap, extractionTimeout)
		}
	}
	return nil
}

// scheduleSamples bounds how many activations are inspected for the shortest gap
const scheduleSamples = 512

// ShortestScheduleGap returns the shortest interval between consecutive runs
// of a 5-field cron expression
func ShortestScheduleGap(schedule string) (time.Duration, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return 0, fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}

	prev := sched.Next(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	var shortest time.Duration
	for i := 0; i < scheduleSamples; i++ {
		next := sched.Next(prev)
		if next.IsZero() {
			break
		}
		if gap := next.Sub(prev); shortest == 0 || gap < shortest {
			shortest = gap
		}
		prev = next
	}
	if shortest == 0 {
		return 0, fmt.Errorf("cron expression %q never repeats", schedule)
	}
	return shortest, nil
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// ParseDuration parses a duration string, falling back when empty or invalid
func ParseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
