package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Domain       string   `json:"domain" yaml:"domain"`
	Wordlist     string   `json:"wordlist" yaml:"wordlist"`
	OutputDir    string   `json:"output_dir" yaml:"output_dir"`
	Threads      int      `json:"threads" yaml:"threads"`
	RateLimit    float64  `json:"rate_limit" yaml:"rate_limit"`
	Resolvers    []string `json:"resolvers" yaml:"resolvers"`
	DNSRetries   int      `json:"dns_retries" yaml:"dns_retries"`
	HTTPRetries  int      `json:"http_retries" yaml:"http_retries"`
	RetryDelayMs int      `json:"retry_delay_ms" yaml:"retry_delay_ms"`
	DNSTimeout   int      `json:"dns_timeout" yaml:"dns_timeout"`
	HTTPTimeout  int      `json:"http_timeout" yaml:"http_timeout"`
	Silent       bool     `json:"silent" yaml:"silent"`
}

func DefaultConfig() Config {
	return Config{
		OutputDir:    "output",
		Threads:      50,
		DNSRetries:   3,
		HTTPRetries:  2,
		RetryDelayMs: 1000,
		DNSTimeout:   3,
		HTTPTimeout:  5,
	}
}

// LoadConfig reads a YAML or JSON config file (by extension) over the
// defaults, so omitted keys keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Domain == "" {
		return fmt.Errorf("target domain is required")
	}
	if c.Wordlist == "" {
		return fmt.Errorf("wordlist path is required")
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	return nil
}
