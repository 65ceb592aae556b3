package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Questions struct {
		Dir      string `yaml:"dir"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"questions"`
	Session struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"session"`
	Leaderboard struct {
		OnlineWindow string `yaml:"online_window"`
	} `yaml:"leaderboard"`
	Quiz struct {
		// ResetScope controls what happens when a session reaches the
		// maximum score: "self" resets only that user's stored score,
		// "all" resets every stored score.
		ResetScope string `yaml:"reset_scope"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks required startup configuration. The Postgres URL carries
// both the connection string and the database name; without it the service
// cannot start.
func (c Config) Validate() error {
	if c.Postgres.URL == "" {
		return fmt.Errorf("config: postgres url is required")
	}
	if c.Questions.Dir == "" {
		return fmt.Errorf("config: questions dir is required")
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
