package config

import (
	"time"

	"github.com/vijay-prabhu/jobmatch/internal/match"
	"github.com/vijay-prabhu/jobmatch/internal/notify"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Matching MatchingConfig `toml:"matching"`
	Notify   NotifyConfig   `toml:"notify"`
	Logging  LoggingConfig  `toml:"logging"`
	Server   ServerConfig   `toml:"server"`
	Schedule ScheduleConfig `toml:"schedule"`
	MCP      MCPConfig      `toml:"mcp"`
}

// DatabaseConfig selects where postings and profiles are read from
type DatabaseConfig struct {
	Driver string `toml:"driver"` // sqlite or postgres
	Path   string `toml:"path"`
	URL    string `toml:"url"` // postgres connection string, falls back to DATABASE_URL
}

// MatchingConfig contains scoring weights and ranking defaults
type MatchingConfig struct {
	MinScore float64                `toml:"min_score"`
	Limit    int                    `toml:"limit"`
	Weights  match.Weights          `toml:"weights"`
	Reasons  match.ReasonThresholds `toml:"reasons"`
}

// Scorer returns the aggregator configuration
func (m MatchingConfig) Scorer() match.Config {
	return match.Config{Weights: m.Weights, Reasons: m.Reasons}
}

// NotifyConfig controls the notification bridge
type NotifyConfig struct {
	Transport      string      `toml:"transport"` // log, redis or gmail
	HighThreshold  float64     `toml:"high_threshold"`
	TopN           int         `toml:"top_n"`
	TimeoutSeconds int         `toml:"timeout_seconds"`
	Redis          RedisConfig `toml:"redis"`
	Gmail          GmailConfig `toml:"gmail"`
}

// Options converts the section to bridge options
func (n NotifyConfig) Options() notify.Options {
	return notify.Options{
		HighThreshold: n.HighThreshold,
		TopN:          n.TopN,
		Timeout:       time.Duration(n.TimeoutSeconds) * time.Second,
	}
}

// RedisConfig contains the pub/sub transport settings
type RedisConfig struct {
	URL     string `toml:"url"`
	Channel string `toml:"channel"`
}

// GmailConfig contains Gmail-specific settings
type GmailConfig struct {
	CredentialsPath string `toml:"credentials_path"`
	TokenPath       string `toml:"token_path"`
	From            string `toml:"from"`
	To              string `toml:"to"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	JSON  bool `toml:"json"`
	Debug bool `toml:"debug"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ScheduleConfig drives the periodic match digest
type ScheduleConfig struct {
	Spec       string   `toml:"spec"`
	ProfileIDs []string `toml:"profile_ids"`
	RunOnStart bool     `toml:"run_on_start"`
}

// MCPConfig contains MCP server settings
type MCPConfig struct {
	Enabled   bool   `toml:"enabled"`
	Transport string `toml:"transport"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	scorer := match.DefaultConfig()
	opts := notify.DefaultOptions()

	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "~/.local/share/jobmatch/jobmatch.db",
		},
		Matching: MatchingConfig{
			MinScore: 0,
			Limit:    50,
			Weights:  scorer.Weights,
			Reasons:  scorer.Reasons,
		},
		Notify: NotifyConfig{
			Transport:      "log",
			HighThreshold:  opts.HighThreshold,
			TopN:           opts.TopN,
			TimeoutSeconds: int(opts.Timeout / time.Second),
			Redis: RedisConfig{
				URL:     "redis://localhost:6379/0",
				Channel: notify.DefaultChannel,
			},
			Gmail: GmailConfig{
				CredentialsPath: "~/.config/jobmatch/credentials.json",
				TokenPath:       "~/.config/jobmatch/token.json",
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Schedule: ScheduleConfig{
			Spec:       "@every 6h",
			RunOnStart: true,
		},
		MCP: MCPConfig{
			Enabled:   true,
			Transport: "stdio",
		},
	}
}
