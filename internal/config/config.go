package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts "4s" / "1h30m" strings in YAML.
type Duration time.Duration

// UnmarshalYAML parses the scalar with time.ParseDuration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

const (
	configPathEnv   = "RSS_PIPELINE_CONFIG"
	databaseURLEnv  = "DATABASE_URL"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
	geminiModelEnv  = "GEMINI_MODEL"
	promptFileEnv   = "PROMPT_FILE"
	telegramToken   = "TELEGRAM_BOT_TOKEN"
	telegramChatID  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across both binaries.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	Analyser      AnalyserConfig     `yaml:"analyser"`
	Fetcher       FetcherConfig      `yaml:"fetcher"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// GeminiConfig defines how to contact the generative-language API.
type GeminiConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// AnalyserConfig tunes the batch enrichment loop.
type AnalyserConfig struct {
	BatchSize         int           `yaml:"batchSize"`
	RequestsPerMinute int           `yaml:"requestsPerMinute"`
	MaxRuntime        Duration      `yaml:"maxRuntime"`
	PromptFile        string        `yaml:"promptFile"`
}

// FetcherConfig tunes the RSS polling pass.
type FetcherConfig struct {
	PerFeedLimit int `yaml:"perFeedLimit"`
	// Interval enables recurring fetches; zero means run once and exit.
	Interval Duration `yaml:"interval"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseURLEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(promptFileEnv); v != "" {
		c.Analyser.PromptFile = v
	}

	if v := os.Getenv(telegramToken); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatID); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}

	if override.Analyser.BatchSize > 0 {
		base.Analyser.BatchSize = override.Analyser.BatchSize
	}
	if override.Analyser.RequestsPerMinute > 0 {
		base.Analyser.RequestsPerMinute = override.Analyser.RequestsPerMinute
	}
	if override.Analyser.MaxRuntime > 0 {
		base.Analyser.MaxRuntime = override.Analyser.MaxRuntime
	}
	if override.Analyser.PromptFile != "" {
		base.Analyser.PromptFile = override.Analyser.PromptFile
	}

	if override.Fetcher.PerFeedLimit > 0 {
		base.Fetcher.PerFeedLimit = override.Fetcher.PerFeedLimit
	}
	if override.Fetcher.Interval > 0 {
		base.Fetcher.Interval = override.Fetcher.Interval
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: ""},
		Gemini: GeminiConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-2.0-flash",
			APIKey:   "",
		},
		Analyser: AnalyserConfig{
			BatchSize:         10,
			RequestsPerMinute: 15,
			MaxRuntime:        Duration(time.Hour),
			PromptFile:        "prompt-google.txt",
		},
		Fetcher: FetcherConfig{
			PerFeedLimit: 20,
			Interval:     0,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
