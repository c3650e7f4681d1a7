package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration structure
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Podman  PodmanConfig  `yaml:"podman"`
	GitHub  GitHubConfig  `yaml:"github"`
}

// StorageConfig controls where tool binaries and scan artifacts live
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// PodmanConfig defines how the container engine is reached
type PodmanConfig struct {
	ProviderID     string `yaml:"providerId"`
	ContainersConf string `yaml:"containersConf"`
}

// GitHubConfig controls release listing and download behavior
type GitHubConfig struct {
	Token        string `yaml:"token,omitempty"`
	ReleaseLimit int    `yaml:"releaseLimit"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Storage: StorageConfig{
			Dir: filepath.Join(home, ".local", "share", "podscan"),
		},
		Podman: PodmanConfig{
			ProviderID:     "podman",
			ContainersConf: filepath.Join(home, ".config", "containers", "containers.conf"),
		},
		GitHub: GitHubConfig{
			ReleaseLimit: 10,
		},
	}
}

// Load reads the configuration from a file, filling unset fields with
// defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Expand environment variables in the file
	expandedData := expandEnvInYaml(string(data))

	config := Default()
	if err := yaml.Unmarshal([]byte(expandedData), config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// expandEnvInYaml expands environment variables in YAML content
func expandEnvInYaml(content string) string {
	// Process ${VAR} style environment variables
	result := os.Expand(content, func(key string) string {
		return os.Getenv(key)
	})

	return result
}

// validateConfig performs basic validation on the configuration
func validateConfig(config *Config) error {
	if config.Storage.Dir == "" {
		return fmt.Errorf("storage dir must be specified")
	}

	if config.Podman.ProviderID == "" {
		return fmt.Errorf("podman provider id must be specified")
	}

	if config.GitHub.ReleaseLimit <= 0 {
		return fmt.Errorf("release limit must be greater than 0")
	}

	return nil
}
