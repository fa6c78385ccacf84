package config

import (
	"os"
	"strconv"

	"gostreak/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	MonteCarlo MonteCarloConfig
	Selection  SelectionConfig
	Data       DataConfig
	LogLevel   string
}

// MonteCarloConfig holds permutation test settings
type MonteCarloConfig struct {
	Trials  int
	Workers int
	Seed    int64
}

// SelectionConfig holds the defaults of the exact selection-bias engine
type SelectionConfig struct {
	StreakLength int
	Probability  float64
	SeasonGames  int
}

// DataConfig holds input settings
type DataConfig struct {
	GamesFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		MonteCarlo: *loadMonteCarloConfig(),
		Selection:  *loadSelectionConfig(),
		Data:       *loadDataConfig(),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadMonteCarloConfig() *MonteCarloConfig {
	return &MonteCarloConfig{
		Trials:  getEnvIntOrDefault("MC_TRIALS", 200),
		Workers: getEnvIntOrDefault("MC_WORKERS", 4),
		Seed:    int64(getEnvIntOrDefault("MC_SEED", 42)),
	}
}

func loadSelectionConfig() *SelectionConfig {
	return &SelectionConfig{
		StreakLength: getEnvIntOrDefault("STREAK_K", 1),
		Probability:  getEnvFloatOrDefault("STREAK_P", 0.5),
		SeasonGames:  getEnvIntOrDefault("SEASON_GAMES", 82),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		GamesFile: getEnvOrDefault("GAMES_FILE", ""),
	}
}

func validateConfig(config *Config) error {
	if config.MonteCarlo.Trials < 1 {
		return errors.ConfigInvalid("MC_TRIALS must be positive")
	}
	if config.MonteCarlo.Workers < 1 {
		return errors.ConfigInvalid("MC_WORKERS must be positive")
	}
	if config.Selection.SeasonGames < 1 {
		return errors.ConfigInvalid("SEASON_GAMES must be positive")
	}
	if config.Selection.StreakLength < 0 || config.Selection.StreakLength >= config.Selection.SeasonGames {
		return errors.ConfigInvalid("STREAK_K must satisfy 0 <= k < SEASON_GAMES")
	}
	if config.Selection.Probability < 0 || config.Selection.Probability > 1 {
		return errors.ConfigInvalid("STREAK_P must lie in [0, 1]")
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
