package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the editor's YAML configuration file. All fields are optional;
// zero values fall back to the defaults below.
type Config struct {
	WindowWidth  int `yaml:"windowWidth"`
	WindowHeight int `yaml:"windowHeight"`

	// AutosaveSeconds is the interval between autosaves of the working scene.
	// 0 disables autosave.
	AutosaveSeconds int `yaml:"autosaveSeconds"`

	// ScriptBudgetMillis bounds per-frame script execution. 0 leaves scripts
	// unbounded, matching the runtime's documented contract.
	ScriptBudgetMillis int `yaml:"scriptBudgetMillis"`

	Export ExportConfig `yaml:"export"`
}

// ExportConfig controls bundle export defaults.
type ExportConfig struct {
	Title         string   `yaml:"title"`
	VirtualWidth  int      `yaml:"virtualWidth"`
	VirtualHeight int      `yaml:"virtualHeight"`
	Audio         []string `yaml:"audio"`
}

func defaultConfig() Config {
	return Config{
		WindowWidth:     1280,
		WindowHeight:    720,
		AutosaveSeconds: 30,
	}
}

// loadConfig reads the YAML config at path. A missing file yields the
// defaults; a malformed file is an error, not a silent fallback.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 1280
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 720
	}
	return cfg, nil
}
