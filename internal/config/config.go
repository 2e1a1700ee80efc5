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
)

// BrowserUserAgent is sent to article sites and the channel preview so that
// trivial bot blocking does not reject the request.
const BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Style     StyleConfig     `yaml:"style"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Collector CollectorConfig `yaml:"collector"`
	Content   ContentConfig   `yaml:"content"`
	LLM       LLMConfig       `yaml:"llm"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`

	// MessagesFile optionally overrides the user-facing texts.
	MessagesFile string `yaml:"messages_file"`
}

type TelegramConfig struct {
	Token              string `yaml:"token"`
	BaseURL            string `yaml:"base_url"`
	PollTimeoutSeconds int    `yaml:"poll_timeout_seconds"`
	MaxConcurrency     int    `yaml:"max_concurrency"`
}

// StyleConfig pins the style source. When Source is empty users pick one
// per run.
type StyleConfig struct {
	Source string `yaml:"source"`
}

type CorpusConfig struct {
	BaseURL               string `yaml:"base_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	MinIntervalMillis     int    `yaml:"min_interval_millis"`
}

type CollectorConfig struct {
	MaxExamples int `yaml:"max_examples"`
	MinExamples int `yaml:"min_examples"`
	ScanLimit   int `yaml:"scan_limit"`
	MinPostLen  int `yaml:"min_post_len"`

	DedupeThreshold float64 `yaml:"dedupe_threshold"`
}

type ContentConfig struct {
	MinTextLen          int `yaml:"min_text_len"`
	MaxTextLen          int `yaml:"max_text_len"`
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`
}

type LLMConfig struct {
	API               string  `yaml:"api"`  // "chat" or "responses"
	Auth              string  `yaml:"auth"` // "direct" or "exchange"
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	OAuthURL          string  `yaml:"oauth_url"`
	Scope             string  `yaml:"scope"`
	Model             string  `yaml:"model"`
	MaxTokens         int     `yaml:"max_tokens"`
	RepetitionPenalty float64 `yaml:"repetition_penalty"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

type ServerConfig struct {
	Enabled             bool   `yaml:"enabled"`
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	StatsKeyHash        string `yaml:"stats_key_hash"`
}

type DatabaseConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() Config {
	return Config{
		Telegram: TelegramConfig{
			BaseURL:            "https://api.telegram.org",
			PollTimeoutSeconds: 30,
			MaxConcurrency:     8,
		},
		Corpus: CorpusConfig{
			BaseURL:               "https://t.me",
			RequestTimeoutSeconds: 20,
			MinIntervalMillis:     500,
		},
		Collector: CollectorConfig{
			MaxExamples: 5,
			MinExamples: 3,
			ScanLimit:   500,
			MinPostLen:  20,
		},
		Content: ContentConfig{
			MinTextLen:          20,
			MaxTextLen:          5000,
			FetchTimeoutSeconds: 30,
		},
		LLM: LLMConfig{
			API:               "responses",
			Auth:              "direct",
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o",
			MaxTokens:         1024,
			RepetitionPenalty: 1.1,
			TimeoutSeconds:    120,
		},
		Server: ServerConfig{
			Enabled:             true,
			Host:                "0.0.0.0",
			Port:                8080,
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
		},
		Database: DatabaseConfig{
			Path:          "./stylebot.db",
			RetentionDays: 90,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file and merges it over defaults, then applies
// environment overrides. A .env file in the working directory is loaded
// first if present. If the config file does not exist, defaults are used.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		slog.Info("No config file found, using defaults", "path", path)
	default:
		return cfg, err
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

// applyEnv overrides secrets and deployment knobs from the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}
	str(&c.Telegram.Token, "STYLEBOT_TELEGRAM_TOKEN", "TELEGRAM_TOKEN")
	str(&c.LLM.APIKey, "STYLEBOT_LLM_API_KEY", "LLM_API_KEY", "OPENAI_API_KEY")
	str(&c.Style.Source, "STYLEBOT_STYLE_SOURCE")
	str(&c.Server.StatsKeyHash, "STYLEBOT_STATS_KEY_HASH")

	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
}

// Validate reports missing credentials and inconsistent bounds. A non-nil
// result is fatal at startup.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Telegram.Token) == "" {
		errs = append(errs, errors.New("telegram.token is required (or set TELEGRAM_TOKEN)"))
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		errs = append(errs, errors.New("llm.api_key is required (or set LLM_API_KEY)"))
	}
	switch c.LLM.API {
	case "chat", "responses":
	default:
		errs = append(errs, fmt.Errorf("llm.api must be \"chat\" or \"responses\", got %q", c.LLM.API))
	}
	switch c.LLM.Auth {
	case "direct":
	case "exchange":
		if c.LLM.OAuthURL == "" || c.LLM.Scope == "" {
			errs = append(errs, errors.New("llm.oauth_url and llm.scope are required when llm.auth is \"exchange\""))
		}
	default:
		errs = append(errs, fmt.Errorf("llm.auth must be \"direct\" or \"exchange\", got %q", c.LLM.Auth))
	}
	if c.Collector.MinExamples < 1 || c.Collector.MaxExamples < c.Collector.MinExamples {
		errs = append(errs, fmt.Errorf("collector bounds invalid: min_examples=%d max_examples=%d",
			c.Collector.MinExamples, c.Collector.MaxExamples))
	}
	if c.Content.MinTextLen < 0 || c.Content.MaxTextLen <= c.Content.MinTextLen {
		errs = append(errs, fmt.Errorf("content bounds invalid: min_text_len=%d max_text_len=%d",
			c.Content.MinTextLen, c.Content.MaxTextLen))
	}
	return errors.Join(errs...)
}

// ParseLevel maps the configured level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (c LLMConfig) Timeout() time.Duration         { return seconds(c.TimeoutSeconds) }
func (c ContentConfig) FetchTimeout() time.Duration { return seconds(c.FetchTimeoutSeconds) }
func (c CorpusConfig) RequestTimeout() time.Duration {
	return seconds(c.RequestTimeoutSeconds)
}
func (c TelegramConfig) PollTimeout() time.Duration { return seconds(c.PollTimeoutSeconds) }
