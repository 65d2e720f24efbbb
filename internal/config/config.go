// Package config loads the seminar-events configuration file. Every
// heuristic knob in the pipeline lives here so that none of the thresholds
// are baked into code.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tmoulton/seminar-events/internal/extract"
	"github.com/tmoulton/seminar-events/internal/identity"
	"github.com/tmoulton/seminar-events/internal/registry"
)

// List is one subscribed mailing-list archive.
type List struct {
	Host   string `yaml:"host"`    // e.g. https://lists.example.edu/pipermail/
	ListID string `yaml:"list_id"` // e.g. seminars
}

// Config is the full configuration tree.
type Config struct {
	DataDir         string `yaml:"data_dir"`
	OutboxDir       string `yaml:"outbox_dir"`
	CredentialsPath string `yaml:"credentials_path"`
	RoomsPath       string `yaml:"rooms_path"`

	Extract  extract.Config  `yaml:"extract"`
	Identity identity.Config `yaml:"identity"`
	Registry registry.Config `yaml:"registry"`

	Lists []List `yaml:"lists"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:   "~/.local/share/seminar-events",
		OutboxDir: "~/.local/share/seminar-events/outbox",
		Extract:   extract.DefaultConfig(),
		Identity:  identity.DefaultConfig(),
		Registry:  registry.DefaultConfig(),
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) < 2 || path[:2] != "~/" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return home + path[1:], nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.Identity.Window <= 0 {
		return errors.New("identity.window must be positive")
	}
	if c.Identity.MergeThreshold <= 0 || c.Identity.MergeThreshold > 1 {
		return errors.New("identity.merge_threshold must be in (0,1]")
	}
	if c.Identity.CorrectionThreshold <= 0 || c.Identity.CorrectionThreshold > c.Identity.MergeThreshold {
		return errors.New("identity.correction_threshold must be in (0, merge_threshold]")
	}
	if c.Extract.DefaultDuration <= 0 {
		return errors.New("extract.default_duration must be positive")
	}
	for i, list := range c.Lists {
		if list.Host == "" || list.ListID == "" {
			return fmt.Errorf("lists[%d]: host and list_id are required", i)
		}
	}
	return nil
}
