package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds machine-wide defaults from ~/.config/paperhub/config.yml.
// Every field is optional; local config and environment variables override it.
type GlobalConfig struct {
	LibraryPath string  `yaml:"library_path,omitempty"`
	Storage     string  `yaml:"storage,omitempty"`
	DatabaseURL string  `yaml:"database_url,omitempty"`
	OllamaURL   string  `yaml:"ollama_url,omitempty"`
	Model       string  `yaml:"embedding_model,omitempty"`
	EmbedRPS    float64 `yaml:"embed_rps,omitempty"`
	PDFReader   string  `yaml:"pdf_reader,omitempty"`
	User        string  `yaml:"user,omitempty"`
}

var (
	globalCache  *GlobalConfig
	globalLoaded bool
)

// GlobalConfigPath returns the global config location, honoring
// XDG_CONFIG_HOME.
func GlobalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "paperhub", "config.yml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "paperhub", "config.yml")
}

// LoadGlobal reads the global config, caching the result for the process.
// A missing file yields the zero GlobalConfig.
func LoadGlobal() (*GlobalConfig, error) {
	if globalLoaded {
		return globalCache, nil
	}
	cfg := &GlobalConfig{}
	path := GlobalConfigPath()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}
	globalCache = cfg
	globalLoaded = true
	return cfg, nil
}

// SaveGlobal writes the global config, creating the directory if needed.
func SaveGlobal(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine global config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling global config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}
	ResetGlobalConfigCache()
	return nil
}

// ResetGlobalConfigCache drops the cached global config. Tests use this
// after changing XDG_CONFIG_HOME.
func ResetGlobalConfigCache() {
	globalCache = nil
	globalLoaded = false
}

// HelpfulLibraryMessage explains how to point paperhub at a library when
// discovery fails.
func HelpfulLibraryMessage() string {
	return fmt.Sprintf(`not in a paperhub library (no %s directory found)

Run "paperhub init" in the directory that should hold your library, or set
a default library in %s:

  library_path: ~/papers
`, LibraryDirName, GlobalConfigPath())
}
