package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources Sources    `yaml:"sources"`
	Load    LoadConfig `yaml:"load"`
	Output  Output     `yaml:"output"`
	Server  Server     `yaml:"server"`
}

type Sources struct {
	OpenFDA   OpenFDASource `yaml:"openfda"`
	DogBreeds BreedSource   `yaml:"dog_breeds"`
	CatBreeds BreedSource   `yaml:"cat_breeds"`
}

type OpenFDASource struct {
	URL             string  `yaml:"url"`
	APIKeyEnv       string  `yaml:"api_key_env"`
	Limit           int     `yaml:"limit"`
	PageSize        int     `yaml:"page_size"`
	ThrottleSeconds float64 `yaml:"throttle_seconds"`
}

type BreedSource struct {
	URL       string `yaml:"url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type LoadConfig struct {
	Checkpoint     int     `yaml:"checkpoint"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

// ConfigDir returns the XDG config directory for vetdw.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "vetdw")
}

// DataDir returns the XDG data directory for vetdw.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "vetdw")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/vetdw/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'vetdw init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Sources: Sources{
			OpenFDA: OpenFDASource{
				URL:             "https://api.fda.gov/animalandveterinary/event.json",
				APIKeyEnv:       "OPENFDA_API_KEY",
				Limit:           2000,
				PageSize:        200,
				ThrottleSeconds: 0.25,
			},
			DogBreeds: BreedSource{
				URL:       "https://api.thedogapi.com/v1/breeds",
				APIKeyEnv: "DOG_API_KEY",
			},
			CatBreeds: BreedSource{
				URL:       "https://api.thecatapi.com/v1/breeds",
				APIKeyEnv: "CAT_API_KEY",
			},
		},
		Load:   LoadConfig{Checkpoint: 100, FuzzyThreshold: 0.6},
		Server: Server{Port: 8000},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
