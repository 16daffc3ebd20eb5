package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthServer holds all configuration for the auth (login) server.
type AuthServer struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// ClientReadTimeout is the per-read deadline for client connections,
	// in seconds. Zero disables the deadline.
	ClientReadTimeout int `yaml:"client_read_timeout"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// ReadTimeout returns the client read deadline as a duration.
func (c AuthServer) ReadTimeout() time.Duration {
	return time.Duration(c.ClientReadTimeout) * time.Second
}

// DefaultAuthServer returns AuthServer config with sensible defaults.
func DefaultAuthServer() AuthServer {
	return AuthServer{
		BindAddress:       "0.0.0.0",
		Port:              2106,
		ClientReadTimeout: 300,
		LogLevel:          "debug",
	}
}

// LoadAuthServer loads auth server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadAuthServer(path string) (AuthServer, error) {
	cfg := DefaultAuthServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
