package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Load reads and parses configuration from a YAML file, applies defaults and
// validates the result. The returned Config is immutable by convention:
// nothing mutates it after Load returns, and file changes do not hot-reload.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", absPath, err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills unset scalar fields. Optional header/footer fields are
// deliberately left alone: their unset state is resolved at render time so
// the renderer can tell "unset" from "explicitly empty".
func applyDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DefaultListen
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = DefaultLogLevel
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}

	if cfg.Printer.Transport == "" {
		cfg.Printer.Transport = DefaultTransport
	}
	if cfg.Printer.Width == 0 {
		cfg.Printer.Width = DefaultWidth
	}
	if cfg.Printer.QueueDepth == 0 {
		cfg.Printer.QueueDepth = DefaultQueueDepth
	}
	if cfg.Printer.JobTimeout == 0 {
		cfg.Printer.JobTimeout = DefaultJobTimeout
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for name, pc := range cfg.Providers {
		if pc.MaxTitleLength == 0 {
			pc.MaxTitleLength = DefaultMaxTitleLength
		}
		if pc.MaxDescriptionLength == 0 {
			pc.MaxDescriptionLength = DefaultMaxDescriptionLength
		}
		cfg.Providers[name] = pc
	}
}

func validate(cfg *Config) error {
	switch cfg.Printer.Transport {
	case "console":
		// No device address required.
	case "network":
		if cfg.Printer.Address == "" {
			return fmt.Errorf("printer.address is required for the network transport")
		}
	default:
		return fmt.Errorf("unknown printer.transport %q (want \"console\" or \"network\")", cfg.Printer.Transport)
	}

	if cfg.Printer.Width < 0 {
		return fmt.Errorf("printer.width must be positive")
	}
	if cfg.Printer.QueueDepth < 0 {
		return fmt.Errorf("printer.queue_depth must be positive")
	}
	if cfg.Printer.JobTimeout < 0 {
		return fmt.Errorf("printer.job_timeout must be positive")
	}

	// Stable iteration so validation errors are deterministic.
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pc := cfg.Providers[name]
		if pc.Disabled {
			continue
		}
		if pc.SigningSecret == "" {
			return fmt.Errorf("provider %q: signing_secret is required when the provider is enabled\n"+
				"To fix this, either set providers.%s.signing_secret or set providers.%s.disabled: true",
				name, name, name)
		}
		if pc.MaxTitleLength <= 0 {
			return fmt.Errorf("provider %q: max_title_length must be positive", name)
		}
		if pc.MaxDescriptionLength <= 0 {
			return fmt.Errorf("provider %q: max_description_length must be positive", name)
		}
	}

	return nil
}
