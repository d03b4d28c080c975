package config

import (
	"os"
	"strconv"
	"strings"

	"goeda/internal"
	"goeda/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathConfig
	Profiles  ProfileConfig
	Synthetic SyntheticConfig
	Charts    ChartConfig
	LogLevel  internal.LogLevel
}

// PathConfig holds file system paths
type PathConfig struct {
	DataDir   string
	OutputDir string
}

// ProfileConfig selects which pipeline profiles run
type ProfileConfig struct {
	Names []string // empty: every built-in profile
	File  string   // optional YAML file adding or overriding profiles
}

// SyntheticConfig controls placeholder fabrication for absent columns
type SyntheticConfig struct {
	Enabled bool
	Seed    int64
}

// ChartConfig holds default figure sizes in inches
type ChartConfig struct {
	Width  float64
	Height float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Paths:     *loadPathConfig(),
		Profiles:  *loadProfileConfig(),
		Synthetic: *loadSyntheticConfig(),
		Charts:    *loadChartConfig(),
		LogLevel:  internal.ParseLogLevel(os.Getenv("LOG_LEVEL")),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		DataDir:   getEnvOrDefault("EDA_DATA_DIR", "."),
		OutputDir: getEnvOrDefault("EDA_OUTPUT_DIR", "output"),
	}
}

func loadProfileConfig() *ProfileConfig {
	return &ProfileConfig{
		Names: getEnvListOrDefault("EDA_PROFILES", nil),
		File:  getEnvOrDefault("EDA_PROFILES_FILE", ""),
	}
}

func loadSyntheticConfig() *SyntheticConfig {
	return &SyntheticConfig{
		Enabled: getEnvBoolOrDefault("EDA_SYNTHETIC", false),
		Seed:    int64(getEnvIntOrDefault("EDA_SEED", 42)),
	}
}

func loadChartConfig() *ChartConfig {
	return &ChartConfig{
		Width:  getEnvFloatOrDefault("EDA_CHART_WIDTH", 10),
		Height: getEnvFloatOrDefault("EDA_CHART_HEIGHT", 6),
	}
}

func validateConfig(config *Config) error {
	if config.Paths.DataDir == "" {
		return errors.ConfigInvalid("data directory is required")
	}
	if config.Paths.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Charts.Width <= 0 || config.Charts.Height <= 0 {
		return errors.ConfigInvalid("chart width and height must be positive")
	}
	if config.Profiles.File != "" {
		if _, err := os.Stat(config.Profiles.File); err != nil {
			return errors.ConfigInvalid("profiles file not readable: " + config.Profiles.File)
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
