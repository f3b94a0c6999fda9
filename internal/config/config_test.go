package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Sources.OpenFDA.URL != "https://api.fda.gov/animalandveterinary/event.json" {
		t.Errorf("unexpected openfda url %q", cfg.Sources.OpenFDA.URL)
	}
	if cfg.Sources.OpenFDA.Limit != 2000 {
		t.Errorf("expected limit 2000, got %d", cfg.Sources.OpenFDA.Limit)
	}
	if cfg.Load.Checkpoint != 100 {
		t.Errorf("expected checkpoint 100, got %d", cfg.Load.Checkpoint)
	}
	if cfg.Load.FuzzyThreshold != 0.6 {
		t.Errorf("expected fuzzy threshold 0.6, got %v", cfg.Load.FuzzyThreshold)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
sources:
  openfda:
    limit: 500
    page_size: 50
load:
  checkpoint: 25
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Sources.OpenFDA.Limit != 500 || cfg.Sources.OpenFDA.PageSize != 50 {
		t.Errorf("expected openfda overrides, got %+v", cfg.Sources.OpenFDA)
	}
	if cfg.Load.Checkpoint != 25 {
		t.Errorf("expected checkpoint 25, got %d", cfg.Load.Checkpoint)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Sources.DogBreeds.URL != "https://api.thedogapi.com/v1/breeds" {
		t.Errorf("expected default dog breeds url, got %q", cfg.Sources.DogBreeds.URL)
	}
	if cfg.Load.FuzzyThreshold != 0.6 {
		t.Errorf("expected default fuzzy threshold, got %v", cfg.Load.FuzzyThreshold)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Sources.OpenFDA.Limit != 2000 {
		t.Errorf("expected limit 2000 from file, got %d", cfg.Sources.OpenFDA.Limit)
	}
}

func TestResolveConfigPathExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	resolved, err := ResolveConfigPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != path {
		t.Errorf("expected %q, got %q", path, resolved)
	}

	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
