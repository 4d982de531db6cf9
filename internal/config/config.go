package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the single configuration context, built once in main and passed
// by reference to whatever needs it. No package reads the environment on its
// own.
type Config struct {
	Port        string `mapstructure:"port"`
	DatabaseURL string `mapstructure:"database_url"`
	ChromePath  string `mapstructure:"chrome_path"`
	AIBaseURL   string `mapstructure:"ai_base_url"`
}

// Load reads RESUME_* environment variables (and an optional config file in
// the working directory) with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("resume")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "3000")
	v.SetDefault("database_url", "")
	v.SetDefault("chrome_path", "")
	v.SetDefault("ai_base_url", "")

	v.SetConfigName("resume-studio")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
