package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
	Redis      Redis      `mapstructure:"redis"`
	Classifier Classifier `mapstructure:"classifier"`
	Assistant  Assistant  `mapstructure:"assistant"`
	Logger     Logger     `mapstructure:"logger"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the sqlite database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Redis holds the configuration for the lookup cache. An empty Addr
// disables caching.
type Redis struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

// Classifier holds the configuration for the AI-assisted intent path.
type Classifier struct {
	Enabled        bool    `mapstructure:"enabled"`
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"apiKey"`
	Model          string  `mapstructure:"model"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Assistant holds engine-level settings.
type Assistant struct {
	DefaultAccountID string `mapstructure:"default_account_id"`
	// DisplayDayShift is a uniform day offset applied to dates at the
	// formatting boundary only, never inside computations.
	DisplayDayShift int `mapstructure:"display_day_shift"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("classifier.rate_limit", 5) // requests per second
	viper.SetDefault("classifier.rate_limit_burst", 2)
	viper.SetDefault("redis.ttl_minutes", 60)
	viper.SetDefault("assistant.display_day_shift", 0)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
