package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/paperhub/paperhub/internal/embedding"
	"github.com/paperhub/paperhub/internal/paper"
)

// Environment variables recognized by Resolve.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvOllamaURL   = "OLLAMA_URL"
	EnvUser        = "PAPERHUB_USER"
)

// Settings is the merged runtime configuration for a library. Precedence,
// highest first: environment, local config, global config, defaults.
// Command-line flags apply on top in the CLI layer.
type Settings struct {
	Root        string
	Storage     string
	DatabaseURL string
	OllamaURL   string
	Model       string
	EmbedRPS    float64
	PDFRoot     string
	PDFReader   string
	User        string
}

// Resolve builds the Settings for a library root. A .env file at the root
// is loaded into the environment first, without overriding variables that
// are already set.
func Resolve(root string) (*Settings, error) {
	// godotenv never clobbers existing environment variables, and a
	// missing .env is not an error worth reporting.
	_ = godotenv.Load(EnvPath(root))

	global, err := LoadGlobal()
	if err != nil {
		return nil, err
	}
	local, err := Load(root)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Root:      root,
		Storage:   "sqlite",
		OllamaURL: embedding.DefaultOllamaURL,
		Model:     embedding.DefaultModel,
		EmbedRPS:  embedding.DefaultEmbedRPS,
		User:      paper.DefaultUser,
	}
	s.applyGlobal(global)
	s.applyLocal(local)
	s.applyEnv()
	return s, nil
}

func (s *Settings) applyGlobal(g *GlobalConfig) {
	if g.Storage != "" {
		s.Storage = g.Storage
	}
	if g.DatabaseURL != "" {
		s.DatabaseURL = g.DatabaseURL
	}
	if g.OllamaURL != "" {
		s.OllamaURL = g.OllamaURL
	}
	if g.Model != "" {
		s.Model = g.Model
	}
	if g.EmbedRPS > 0 {
		s.EmbedRPS = g.EmbedRPS
	}
	if g.PDFReader != "" {
		s.PDFReader = g.PDFReader
	}
	if g.User != "" {
		s.User = g.User
	}
}

func (s *Settings) applyLocal(c *Config) {
	if c.Storage != "" {
		s.Storage = c.Storage
	}
	if c.DatabaseURL != "" {
		s.DatabaseURL = c.DatabaseURL
	}
	if c.OllamaURL != "" {
		s.OllamaURL = c.OllamaURL
	}
	if c.Model != "" {
		s.Model = c.Model
	}
	if c.EmbedRPS > 0 {
		s.EmbedRPS = c.EmbedRPS
	}
	if c.PDFRoot != "" {
		s.PDFRoot = c.PDFRoot
	}
	if c.PDFReader != "" {
		s.PDFReader = c.PDFReader
	}
	if c.User != "" {
		s.User = c.User
	}
}

func (s *Settings) applyEnv() {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		s.DatabaseURL = v
	}
	if v := os.Getenv(EnvOllamaURL); v != "" {
		s.OllamaURL = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		s.User = v
	}
}
