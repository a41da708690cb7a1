// Package config locates PaperHub libraries and loads their configuration.
//
// A library is any directory containing a .paperhub/ subdirectory. The
// local config lives at .paperhub/config.json; machine-wide defaults live
// at ~/.config/paperhub/config.yml. Environment variables override both.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// LibraryDirName is the marker directory identifying a library root.
	LibraryDirName = ".paperhub"

	// ConfigFileName is the per-library config file inside LibraryDirName.
	ConfigFileName = "config.json"

	// DBFileName is the SQLite database file inside LibraryDirName.
	DBFileName = "library.db"

	// EnvFileName is the optional dotenv file at the library root.
	EnvFileName = ".env"
)

// EnvRoot overrides library discovery when set.
const EnvRoot = "PAPERHUB_ROOT"

// Config is the per-library configuration stored in config.json.
// Zero values mean "unset"; Resolve fills unset fields from the global
// config, the environment, and built-in defaults.
type Config struct {
	Storage     string  `json:"storage,omitempty"`
	DatabaseURL string  `json:"database_url,omitempty"`
	OllamaURL   string  `json:"ollama_url,omitempty"`
	Model       string  `json:"embedding_model,omitempty"`
	EmbedRPS    float64 `json:"embed_rps,omitempty"`
	PDFRoot     string  `json:"pdf_root,omitempty"`
	PDFReader   string  `json:"pdf_reader,omitempty"`
	User        string  `json:"user,omitempty"`
}

// LibraryPath returns the .paperhub directory for a library root.
func LibraryPath(root string) string {
	return filepath.Join(root, LibraryDirName)
}

// ConfigPath returns the config.json path for a library root.
func ConfigPath(root string) string {
	return filepath.Join(root, LibraryDirName, ConfigFileName)
}

// DBPath returns the SQLite database path for a library root.
func DBPath(root string) string {
	return filepath.Join(root, LibraryDirName, DBFileName)
}

// EnvPath returns the dotenv path for a library root.
func EnvPath(root string) string {
	return filepath.Join(root, EnvFileName)
}

// IsLibrary reports whether root contains a .paperhub directory.
func IsLibrary(root string) bool {
	info, err := os.Stat(LibraryPath(root))
	return err == nil && info.IsDir()
}

// FindLibrary locates the library root for a path. PAPERHUB_ROOT wins when
// set; otherwise the directory tree is walked upward from start. When
// neither yields a library, the global config's library_path is tried as a
// last resort.
func FindLibrary(start string) (string, error) {
	if env := os.Getenv(EnvRoot); env != "" {
		root := ExpandPath(env)
		if !IsLibrary(root) {
			return "", fmt.Errorf("%s points to %s, which is not a paperhub library", EnvRoot, root)
		}
		return root, nil
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for {
		if IsLibrary(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			break
		}
		abs = parent
	}

	if global, err := LoadGlobal(); err == nil && global.LibraryPath != "" {
		root := ExpandPath(global.LibraryPath)
		if IsLibrary(root) {
			return root, nil
		}
	}

	return "", fmt.Errorf("not in a paperhub library (no %s directory found)", LibraryDirName)
}

// Load reads the local config for a library root. A missing config.json is
// not an error; it yields the zero Config.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigPath(root), err)
	}
	return &cfg, nil
}

// Save writes the local config for a library root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ValidReaders lists the PDF reader commands accepted in config.
var ValidReaders = []string{"open", "xdg-open", "evince", "okular", "zathura", "mupdf", "skim", "preview"}

// ValidatePDFReader checks a configured reader command against ValidReaders.
// An empty reader is valid; the platform default is used.
func ValidatePDFReader(reader string) error {
	if reader == "" {
		return nil
	}
	base := filepath.Base(reader)
	for _, valid := range ValidReaders {
		if base == valid {
			return nil
		}
	}
	return fmt.Errorf("unsupported PDF reader %q (supported: %s)", reader, strings.Join(ValidReaders, ", "))
}

// ValidatePDFRoot checks that a configured PDF root exists and is a
// directory. An empty root is valid.
func ValidatePDFRoot(root string) error {
	if root == "" {
		return nil
	}
	expanded := ExpandPath(root)
	info, err := os.Stat(expanded)
	if err != nil {
		return fmt.Errorf("pdf_root %s: %w", expanded, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("pdf_root %s is not a directory", expanded)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
