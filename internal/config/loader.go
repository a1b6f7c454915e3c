package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Loader defines the interface for loading configuration files.
type Loader interface {
	// Load loads configuration from the specified file path.
	Load(path string) (*Config, error)
	// Validate validates the configuration.
	Validate(config *Config) error
}

// FileLoader implements the Loader interface for file-based configuration loading.
type FileLoader struct{}

// NewLoader creates a new FileLoader instance.
func NewLoader() Loader {
	return &FileLoader{}
}

// Load loads configuration from the specified file path, applies
// defaults, and validates the result.
func (l *FileLoader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewConfigErrorWithCause(ConfigNotFound, path, "configuration file not found", err)
		}
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to read configuration file", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "invalid YAML syntax", err)
	}

	applyDefaults(&cfg)

	if err := l.validate(&cfg, path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (l *FileLoader) Validate(config *Config) error {
	return l.validate(config, "")
}

func (l *FileLoader) validate(cfg *Config, path string) error {
	if cfg.Host == "" {
		return NewConfigErrorWithField(ConfigValidationFailed, path, "host", "host is required")
	}
	if cfg.BuildCommand == "" {
		return NewConfigErrorWithField(ConfigValidationFailed, path, "build_command", "build_command is required")
	}
	return nil
}
