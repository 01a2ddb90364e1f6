// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Config holds all server settings. Zero values are filled in by Load.
type Config struct {
	Server struct {
		Name         string `yaml:"name"`
		Host         string `yaml:"host"`
		Port         string `yaml:"port"`
		Motd         string `yaml:"motd"`
		Password     string `yaml:"password"`
		PasswordHash string `yaml:"password_hash"`
		Debug        bool   `yaml:"debug"`
	} `yaml:"server"`

	Limits struct {
		ChannelsPerClient    int `yaml:"channels_per_client"`
		ClientTimeoutMinutes int `yaml:"client_timeout_minutes"`
	} `yaml:"limits"`

	Redis struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
		PodID   string `yaml:"pod_id"`
	} `yaml:"redis"`
}

// Default returns a configuration suitable for a local single-server setup.
func Default() *Config {
	c := &Config{}
	c.Server.Name = "localhost"
	c.Server.Host = "localhost"
	c.Server.Port = "6667"
	c.Limits.ChannelsPerClient = 10
	c.Limits.ClientTimeoutMinutes = 15
	return c
}

// Load reads the YAML file at path and merges it over the defaults.
// A missing file is not an error; the defaults are returned as is.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.Limits.ChannelsPerClient <= 0 {
		c.Limits.ChannelsPerClient = 10
	}
	if c.Limits.ClientTimeoutMinutes <= 0 {
		c.Limits.ClientTimeoutMinutes = 15
	}
	return c, nil
}
