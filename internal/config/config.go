// Package config loads application configuration from the environment
// with an optional YAML overlay file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LLM provider identifiers.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogleAI  = "googleai"
	ProviderBedrock   = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	ListenAddr string

	// SQLite store
	DBPath string

	// LLM provider
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GoogleAIAPIKey  string
	BedrockRegion   string

	// Completion call bound. Timeout expiry is reported to the caller
	// as a degraded reply, never as an HTTP error.
	LLMTimeout time.Duration

	// Credential verification
	JWTSecret  string
	AuthStrict bool

	// Conversation store bounds
	MaxSessions    int
	SessionIdleTTL time.Duration
	MaxTurns       int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables. If DANCEHALL_CONFIG
// names a YAML file, its values are applied first and the environment
// overrides them.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:      getEnv("DANCEHALL_ADDR", ":8090"),
		DBPath:          getEnv("DANCEHALL_DB", "dancehall.db"),
		LLMProvider:     getEnv("DANCEHALL_LLM_PROVIDER", ProviderGoogleAI),
		LLMModel:        getEnv("DANCEHALL_LLM_MODEL", "gemini-1.5-pro"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GoogleAIAPIKey:  os.Getenv("GEMINI_API_KEY"),
		BedrockRegion:   getEnv("AWS_REGION", "us-east-1"),
		LLMTimeout:      getDuration("DANCEHALL_LLM_TIMEOUT", 60*time.Second),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AuthStrict:      getEnv("DANCEHALL_AUTH_STRICT", "false") == "true",
		MaxSessions:     getInt("DANCEHALL_MAX_SESSIONS", 512),
		SessionIdleTTL:  getDuration("DANCEHALL_SESSION_TTL", 30*time.Minute),
		MaxTurns:        getInt("DANCEHALL_MAX_TURNS", 40),
		LogFile:         getEnv("DANCEHALL_LOG_FILE", ""),
		LogLevel:        parseLogLevel(getEnv("DANCEHALL_LOG_LEVEL", "INFO")),
	}

	if path := os.Getenv("DANCEHALL_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, fmt.Errorf("load config file: %w", err)
		}
	}

	return cfg, nil
}

// fileConfig is the YAML overlay shape. Only non-zero values are applied;
// environment variables win over the file.
type fileConfig struct {
	ListenAddr     string `yaml:"listen_addr"`
	DBPath         string `yaml:"db_path"`
	LLMProvider    string `yaml:"llm_provider"`
	LLMModel       string `yaml:"llm_model"`
	LLMTimeout     string `yaml:"llm_timeout"`
	AuthStrict     *bool  `yaml:"auth_strict"`
	MaxSessions    int    `yaml:"max_sessions"`
	SessionIdleTTL string `yaml:"session_idle_ttl"`
	MaxTurns       int    `yaml:"max_turns"`
	LogFile        string `yaml:"log_file"`
	LogLevel       string `yaml:"log_level"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	apply := func(env string, dst *string, val string) {
		if val != "" && os.Getenv(env) == "" {
			*dst = val
		}
	}

	apply("DANCEHALL_ADDR", &c.ListenAddr, fc.ListenAddr)
	apply("DANCEHALL_DB", &c.DBPath, fc.DBPath)
	apply("DANCEHALL_LLM_PROVIDER", &c.LLMProvider, fc.LLMProvider)
	apply("DANCEHALL_LLM_MODEL", &c.LLMModel, fc.LLMModel)
	apply("DANCEHALL_LOG_FILE", &c.LogFile, fc.LogFile)

	if fc.LLMTimeout != "" && os.Getenv("DANCEHALL_LLM_TIMEOUT") == "" {
		d, err := time.ParseDuration(fc.LLMTimeout)
		if err != nil {
			return fmt.Errorf("parse llm_timeout: %w", err)
		}
		c.LLMTimeout = d
	}
	if fc.SessionIdleTTL != "" && os.Getenv("DANCEHALL_SESSION_TTL") == "" {
		d, err := time.ParseDuration(fc.SessionIdleTTL)
		if err != nil {
			return fmt.Errorf("parse session_idle_ttl: %w", err)
		}
		c.SessionIdleTTL = d
	}
	if fc.AuthStrict != nil && os.Getenv("DANCEHALL_AUTH_STRICT") == "" {
		c.AuthStrict = *fc.AuthStrict
	}
	if fc.MaxSessions > 0 && os.Getenv("DANCEHALL_MAX_SESSIONS") == "" {
		c.MaxSessions = fc.MaxSessions
	}
	if fc.MaxTurns > 0 && os.Getenv("DANCEHALL_MAX_TURNS") == "" {
		c.MaxTurns = fc.MaxTurns
	}
	if fc.LogLevel != "" && os.Getenv("DANCEHALL_LOG_LEVEL") == "" {
		c.LogLevel = parseLogLevel(fc.LogLevel)
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
