package config

import (
	"errors"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	ModePrefix = "prefix"
	ModeSlash  = "slash"

	DMRoute = "route"
	DMDrop  = "drop"
)

type Config struct {
	DiscordToken    string          `yaml:"discord_token" env:"DISCORD_TOKEN"`
	OwnerID         string          `yaml:"owner_id" env:"OWNER_ID"`
	DatabasePath    string          `yaml:"database_path" env:"DATABASE_PATH"`
	LogLevel        string          `yaml:"log_level" env:"LOG_LEVEL"`
	CommandMode     string          `yaml:"command_mode" env:"COMMAND_MODE"`
	DMPolicy        string          `yaml:"dm_policy" env:"DM_POLICY"`
	DefaultPrefix   string          `yaml:"default_prefix" env:"DEFAULT_PREFIX"`
	DefaultLanguage string          `yaml:"default_language" env:"DEFAULT_LANGUAGE"`
	Health          HealthConfig    `yaml:"health"`
	Glyphs          GlyphConfig     `yaml:"glyphs"`
	Debug           WebhookConfig   `yaml:"debug_webhook"`
	Listeners       ListenerToggles `yaml:"listeners"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled" env:"HEALTH_ENABLED"`
	Addr    string `yaml:"addr" env:"HEALTH_ADDR"`
}

type GlyphConfig struct {
	Success string `yaml:"success" env:"GLYPH_SUCCESS"`
	Failure string `yaml:"failure" env:"GLYPH_FAILURE"`
}

type WebhookConfig struct {
	ID    string `yaml:"id" env:"DEBUG_WEBHOOK_ID"`
	Token string `yaml:"token" env:"DEBUG_WEBHOOK_TOKEN"`
}

type ListenerToggles struct {
	Hearts    bool `yaml:"hearts" env:"LISTENER_HEARTS"`
	Thanks    bool `yaml:"thanks" env:"LISTENER_THANKS"`
	Levels    bool `yaml:"levels" env:"LISTENER_LEVELS"`
	Mention   bool `yaml:"mention" env:"LISTENER_MENTION"`
	Antiphish bool `yaml:"antiphish" env:"LISTENER_ANTIPHISH"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:    "/data/becca.db",
		LogLevel:        "info",
		CommandMode:     ModeSlash,
		DMPolicy:        DMRoute,
		DefaultPrefix:   "becca!",
		DefaultLanguage: "en",
		Health:          HealthConfig{Enabled: false, Addr: ":8080"},
		Glyphs:          GlyphConfig{Success: "✅", Failure: "❌"},
		Listeners: ListenerToggles{
			Hearts:    true,
			Thanks:    true,
			Levels:    true,
			Mention:   true,
			Antiphish: true,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.OwnerID == "" {
		return Config{}, errors.New("OWNER_ID is required")
	}

	cfg.CommandMode = normalizeMode(cfg.CommandMode)
	cfg.DMPolicy = normalizeDMPolicy(cfg.DMPolicy)
	cfg.DefaultPrefix = strings.ToLower(cfg.DefaultPrefix)

	return cfg, nil
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func normalizeMode(value string) string {
	switch strings.ToLower(value) {
	case ModePrefix:
		return ModePrefix
	default:
		return ModeSlash
	}
}

func normalizeDMPolicy(value string) string {
	switch strings.ToLower(value) {
	case DMDrop:
		return DMDrop
	default:
		return DMRoute
	}
}
