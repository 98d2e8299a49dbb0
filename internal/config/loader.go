package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'jobmatch config init' to create)", expandedPath)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML on top of the defaults, then expands and validates it
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Database.Path,
		&c.Notify.Gmail.CredentialsPath,
		&c.Notify.Gmail.TokenPath,
	} {
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Database validation
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url (or DATABASE_URL) is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver must be 'sqlite' or 'postgres', got '%s'", c.Database.Driver))
	}

	// Matching validation
	if err := c.Matching.Scorer().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("matching: %w", err))
	}
	if c.Matching.MinScore < 0 || c.Matching.MinScore > 1 {
		errs = append(errs, errors.New("matching.min_score must be between 0 and 1"))
	}
	if c.Matching.Limit < 0 {
		errs = append(errs, errors.New("matching.limit must not be negative"))
	}

	// Notify validation
	switch c.Notify.Transport {
	case "log":
	case "redis":
		if c.Notify.Redis.URL == "" {
			errs = append(errs, errors.New("notify.redis.url is required for the redis transport"))
		}
	case "gmail":
		if c.Notify.Gmail.To == "" {
			errs = append(errs, errors.New("notify.gmail.to is required for the gmail transport"))
		}
		if c.Notify.Gmail.CredentialsPath == "" || c.Notify.Gmail.TokenPath == "" {
			errs = append(errs, errors.New("notify.gmail.credentials_path and token_path are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("notify.transport must be 'log', 'redis' or 'gmail', got '%s'", c.Notify.Transport))
	}
	if c.Notify.HighThreshold < 0 || c.Notify.HighThreshold > 1 {
		errs = append(errs, errors.New("notify.high_threshold must be between 0 and 1"))
	}
	if c.Notify.TopN < 0 {
		errs = append(errs, errors.New("notify.top_n must not be negative"))
	}
	if c.Notify.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("notify.timeout_seconds must not be negative"))
	}

	// Server validation
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	// Schedule validation
	if _, err := cron.ParseStandard(c.Schedule.Spec); err != nil {
		errs = append(errs, fmt.Errorf("schedule.spec is invalid: %w", err))
	}

	// MCP validation
	if c.MCP.Transport != "stdio" {
		errs = append(errs, fmt.Errorf("mcp.transport must be 'stdio', got '%s'", c.MCP.Transport))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// EnsureDirectories creates necessary directories for the database and token
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Notify.Gmail.TokenPath)}
	if c.Database.Driver == "sqlite" {
		dirs = append(dirs, filepath.Dir(c.Database.Path))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
