package main

import (
	"os"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Perimeters != 2 {
		t.Errorf("Perimeters = %d, want 2", cfg.Perimeters)
	}
	if cfg.ExtrusionWidth != 0.4*1.2 {
		t.Errorf("ExtrusionWidth = %v, want %v", cfg.ExtrusionWidth, 0.4*1.2)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	content := "perimeters: 4\nnozzle_diameter: 0.6\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Perimeters != 4 {
		t.Errorf("Perimeters = %d, want 4", cfg.Perimeters)
	}
	if cfg.NozzleDiameter != 0.6 {
		t.Errorf("NozzleDiameter = %v, want 0.6", cfg.NozzleDiameter)
	}
	// Unspecified fields fall back to defaults.
	if cfg.TopLayers != 3 {
		t.Errorf("TopLayers = %d, want 3 (default)", cfg.TopLayers)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("loadConfig() with missing file expected error, got nil")
	}
}
