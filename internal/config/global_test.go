package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGlobal(t *testing.T, content string) {
	t.Helper()
	path := GlobalConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalConfigPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got, want := GlobalConfigPath(), filepath.Join("/xdg", "paperhub", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath = %s, want %s", got, want)
	}
}

func TestLoadGlobalMissing(t *testing.T) {
	isolate(t)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if *cfg != (GlobalConfig{}) {
		t.Errorf("LoadGlobal of missing file = %+v, want zero", cfg)
	}
}

func TestLoadGlobalCaches(t *testing.T) {
	isolate(t)
	writeGlobal(t, "user: first\n")

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.User != "first" {
		t.Fatalf("User = %q, want first", cfg.User)
	}

	writeGlobal(t, "user: second\n")
	cfg, err = LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.User != "first" {
		t.Errorf("cached User = %q, want first", cfg.User)
	}

	ResetGlobalConfigCache()
	cfg, err = LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.User != "second" {
		t.Errorf("after reset User = %q, want second", cfg.User)
	}
}

func TestLoadGlobalRejectsBadYAML(t *testing.T) {
	isolate(t)
	writeGlobal(t, "user: [unclosed\n")
	if _, err := LoadGlobal(); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveGlobalRoundtrip(t *testing.T) {
	isolate(t)
	want := &GlobalConfig{
		LibraryPath: "~/papers",
		OllamaURL:   "http://gpu-box:11434",
		Model:       "all-minilm:l6-v2",
	}
	if err := SaveGlobal(want); err != nil {
		t.Fatalf("SaveGlobal: %v", err)
	}
	got, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if *got != *want {
		t.Errorf("roundtrip = %+v, want %+v", got, want)
	}
}

func TestResolvePrecedence(t *testing.T) {
	isolate(t)
	writeGlobal(t, "ollama_url: http://global:1\nembedding_model: global-model\nembed_rps: 2\nuser: global-user\n")

	root := newLibrary(t)
	local := &Config{Model: "local-model", EmbedRPS: 4, User: "local-user"}
	if err := local.Save(root); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvDatabaseURL, "postgres://env/papers")
	unsetenv(t, EnvOllamaURL)
	unsetenv(t, EnvUser)

	s, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.Root != root {
		t.Errorf("Root = %s, want %s", s.Root, root)
	}
	if s.Storage != "sqlite" {
		t.Errorf("Storage = %q, want default sqlite", s.Storage)
	}
	if s.OllamaURL != "http://global:1" {
		t.Errorf("OllamaURL = %q, want global value", s.OllamaURL)
	}
	if s.Model != "local-model" {
		t.Errorf("Model = %q, want local override", s.Model)
	}
	if s.EmbedRPS != 4 {
		t.Errorf("EmbedRPS = %v, want local override 4", s.EmbedRPS)
	}
	if s.User != "local-user" {
		t.Errorf("User = %q, want local override", s.User)
	}
	if s.DatabaseURL != "postgres://env/papers" {
		t.Errorf("DatabaseURL = %q, want env override", s.DatabaseURL)
	}
}

func TestResolveDefaults(t *testing.T) {
	isolate(t)
	unsetenv(t, EnvDatabaseURL)
	unsetenv(t, EnvOllamaURL)
	unsetenv(t, EnvUser)

	s, err := Resolve(newLibrary(t))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.Storage != "sqlite" || s.OllamaURL != "http://localhost:11434" ||
		s.Model != "all-minilm:l6-v2" || s.EmbedRPS != 8 || s.User != "default_user" {
		t.Errorf("defaults = %+v", s)
	}
}

func TestResolveDotenv(t *testing.T) {
	isolate(t)
	unsetenv(t, EnvOllamaURL)

	root := newLibrary(t)
	env := "OLLAMA_URL=http://dotenv:9\n"
	if err := os.WriteFile(EnvPath(root), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.OllamaURL != "http://dotenv:9" {
		t.Errorf("OllamaURL = %q, want dotenv value", s.OllamaURL)
	}
}

func TestResolveDotenvDoesNotOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvOllamaURL, "http://real:2")

	root := newLibrary(t)
	if err := os.WriteFile(EnvPath(root), []byte("OLLAMA_URL=http://dotenv:9\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.OllamaURL != "http://real:2" {
		t.Errorf("OllamaURL = %q, want environment value", s.OllamaURL)
	}
}
