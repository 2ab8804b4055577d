package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowWidth != 1280 || cfg.WindowHeight != 720 || cfg.AutosaveSeconds != 30 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glimmer.yaml")
	doc := `windowWidth: 1920
windowHeight: 1080
autosaveSeconds: 0
scriptBudgetMillis: 8
export:
  title: My Game
  virtualWidth: 1024
  virtualHeight: 768
  audio:
    - assets/jump.wav
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowWidth != 1920 || cfg.WindowHeight != 1080 {
		t.Errorf("window = %dx%d", cfg.WindowWidth, cfg.WindowHeight)
	}
	if cfg.AutosaveSeconds != 0 {
		t.Error("explicit autosaveSeconds: 0 should disable autosave")
	}
	if cfg.ScriptBudgetMillis != 8 {
		t.Errorf("scriptBudgetMillis = %d", cfg.ScriptBudgetMillis)
	}
	if cfg.Export.Title != "My Game" || len(cfg.Export.Audio) != 1 {
		t.Errorf("export = %+v", cfg.Export)
	}
}

func TestLoadConfigMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glimmer.yaml")
	if err := os.WriteFile(path, []byte("windowWidth: {nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestLoadConfigClampsWindowSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glimmer.yaml")
	if err := os.WriteFile(path, []byte("windowWidth: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowWidth != 1280 {
		t.Errorf("windowWidth = %d, want default", cfg.WindowWidth)
	}
}
