package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"stockhand/internal/config"
)

// loadConfig reads the config file if it exists and falls back to
// defaults otherwise. A file that exists but does not parse or
// validate is an error.
func loadConfig() (config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		path = "stockhand.json"
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := config.Default()
		return cfg, nil
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := config.ValidateSettings(viper.AllSettings()); err != nil {
		return config.Config{}, err
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
