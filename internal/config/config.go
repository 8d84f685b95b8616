// Package config handles configuration loading and management for TopShelf.
// It supports XDG config paths, project-level overrides, .env files, and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for TopShelf.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Wavespeed WavespeedConfig `mapstructure:"wavespeed"`
	Zeabur    ZeaburConfig    `mapstructure:"zeabur"`
	Firecrawl FirecrawlConfig `mapstructure:"firecrawl"`
	Hydration HydrationConfig `mapstructure:"hydration"`
	Output    OutputConfig    `mapstructure:"output"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds settings for the assistant brain and branding
// synthesis calls.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// UseAWSBedrock routes calls through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// WavespeedConfig holds settings for the image generation service.
type WavespeedConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// ZeaburConfig holds settings for the deployment service.
type ZeaburConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// FirecrawlConfig holds settings for the content extraction service.
type FirecrawlConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// HydrationConfig tunes the image hydration batcher.
type HydrationConfig struct {
	// BatchSize is the number of products hydrated concurrently per batch.
	BatchSize int `mapstructure:"batch_size"`
	// BatchDelay is the pause between batches, respecting the image
	// service's rate limit.
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	// RequestTimeout bounds each collaborator HTTP call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// OutputConfig holds settings for the generated storefront files.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// TUIConfig holds chat interface display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, .env files,
// and environment variables.
// Precedence (highest to lowest):
//  1. Environment variables (ANTHROPIC_API_KEY, WAVESPEED_API_KEY, ...)
//  2. Project config (.topshelf.yaml in current directory or a parent)
//  3. User config (~/.config/topshelf/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	// The original keys live in a .env file; load it into the environment
	// before anything reads env vars. A missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Load user config from XDG path
	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("wavespeed.api_key", "WAVESPEED_API_KEY")
	v.BindEnv("zeabur.api_key", "ZEABUR_API_KEY")
	v.BindEnv("firecrawl.api_key", "FIRECRAWL_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references in keys
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Wavespeed.APIKey = expandEnv(cfg.Wavespeed.APIKey)
	cfg.Zeabur.APIKey = expandEnv(cfg.Zeabur.APIKey)
	cfg.Firecrawl.APIKey = expandEnv(cfg.Firecrawl.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Wavespeed.APIKey = expandEnv(cfg.Wavespeed.APIKey)
	cfg.Zeabur.APIKey = expandEnv(cfg.Zeabur.APIKey)
	cfg.Firecrawl.APIKey = expandEnv(cfg.Firecrawl.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("wavespeed.api_key", cfg.Wavespeed.APIKey)
	v.Set("wavespeed.base_url", cfg.Wavespeed.BaseURL)
	v.Set("zeabur.api_key", cfg.Zeabur.APIKey)
	v.Set("firecrawl.api_key", cfg.Firecrawl.APIKey)
	v.Set("firecrawl.base_url", cfg.Firecrawl.BaseURL)
	v.Set("hydration.batch_size", cfg.Hydration.BatchSize)
	v.Set("hydration.batch_delay", cfg.Hydration.BatchDelay.String())
	v.Set("hydration.request_timeout", cfg.Hydration.RequestTimeout.String())
	v.Set("output.dir", cfg.Output.Dir)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.model", "")
	v.SetDefault("wavespeed.base_url", "https://api.wavespeed.ai/api/v3/google/nano-banana-2/text-to-image")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1/scrape")
	v.SetDefault("hydration.batch_size", 5)
	v.SetDefault("hydration.batch_delay", "10s")
	v.SetDefault("hydration.request_timeout", "30s")
	v.SetDefault("output.dir", "storefront")
	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for TopShelf.
func getUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "topshelf")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".topshelf"
	}
	return filepath.Join(home, ".config", "topshelf")
}

// findProjectConfig walks up from the current directory looking for a
// .topshelf.yaml override.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".topshelf.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnv expands ${VAR} references, returning "" for unresolved ones
// so a literal "${ANTHROPIC_API_KEY}" never leaks into requests.
func expandEnv(s string) string {
	expanded := os.ExpandEnv(s)
	if strings.HasPrefix(expanded, "${") {
		return ""
	}
	return expanded
}
