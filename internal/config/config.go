package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Port      int       `yaml:"port" env:"PORT" env-default:"3000"`
	WebSocket WebSocket `yaml:"websocket"`
}

type WebSocket struct {
	SendBuffer     int   `yaml:"send-buffer" env:"WS_SEND_BUFFER" env-default:"256"`
	MaxMessageSize int64 `yaml:"max-message-size" env:"WS_MAX_MESSAGE_SIZE" env-default:"4096"`
}

// Load - reads config.yml when it exists, otherwise the environment alone. Environment variables always win.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config from environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	}

	return config, nil
}

// MustLoad - same as Load but panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}
