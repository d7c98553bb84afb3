package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode     string `mapstructure:"mode"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// Secret signs guest credentials; must be at least 16 chars.
	Secret string `mapstructure:"secret"`

	// External media service (LiveKit-compatible).
	MediaURL       string `mapstructure:"media_url"`
	MediaAPIKey    string `mapstructure:"media_api_key"`
	MediaAPISecret string `mapstructure:"media_api_secret"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", "5s")

	// Secrets come from the environment, never from the yaml file.
	_ = v.BindEnv("secret", "HERMES_JWT_SECRET")
	_ = v.BindEnv("media_url", "LIVEKIT_URL")
	_ = v.BindEnv("media_api_key", "LIVEKIT_API_KEY")
	_ = v.BindEnv("media_api_secret", "LIVEKIT_API_SECRET")

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults plus env cover it.
		if _, statErr := os.Stat(fileName); statErr == nil {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
