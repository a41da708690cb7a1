package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/config"
	"github.com/paperhub/paperhub/internal/storage"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetLibraryCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Show or change configuration.

'show' and 'get' report the effective configuration after merging
defaults, the global config, the library config, and environment
variables. 'set' writes to the library's config.json.

Keys:
  storage       Storage backend (sqlite, postgres)
  database-url  PostgreSQL connection string
  ollama-url    Ollama base URL
  model         Embedding model tag
  embed-rps     Embedding requests per second
  pdf-root      Path to the PDF folder
  pdf-reader    PDF reader preference (open, xdg-open, evince, okular, zathura, mupdf, skim, preview)
  user          Default reader identity`,
}

// ConfigShowResponse is the response for config show.
type ConfigShowResponse struct {
	Root        string  `json:"root"`
	Storage     string  `json:"storage"`
	DatabaseURL string  `json:"database_url,omitempty"`
	OllamaURL   string  `json:"ollama_url"`
	Model       string  `json:"model"`
	EmbedRPS    float64 `json:"embed_rps"`
	PDFRoot     string  `json:"pdf_root,omitempty"`
	PDFReader   string  `json:"pdf_reader,omitempty"`
	User        string  `json:"user"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings := mustResolveSettings(mustFindLibrary())

	if humanOutput {
		fmt.Printf("root:         %s\n", settings.Root)
		fmt.Printf("storage:      %s\n", settings.Storage)
		fmt.Printf("database-url: %s\n", settings.DatabaseURL)
		fmt.Printf("ollama-url:   %s\n", settings.OllamaURL)
		fmt.Printf("model:        %s\n", settings.Model)
		fmt.Printf("embed-rps:    %s\n", strconv.FormatFloat(settings.EmbedRPS, 'f', -1, 64))
		fmt.Printf("pdf-root:     %s\n", settings.PDFRoot)
		fmt.Printf("pdf-reader:   %s\n", settings.PDFReader)
		fmt.Printf("user:         %s\n", settings.User)
	} else {
		outputJSON(ConfigShowResponse{
			Root:        settings.Root,
			Storage:     settings.Storage,
			DatabaseURL: settings.DatabaseURL,
			OllamaURL:   settings.OllamaURL,
			Model:       settings.Model,
			EmbedRPS:    settings.EmbedRPS,
			PDFRoot:     settings.PDFRoot,
			PDFReader:   settings.PDFReader,
			User:        settings.User,
		})
	}
	return nil
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get one effective configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	settings := mustResolveSettings(mustFindLibrary())

	key := normalizeKey(args[0])
	value, ok := settingsValue(settings, key)
	if !ok {
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if humanOutput {
		fmt.Println(value)
	} else {
		outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
	}
	return nil
}

// UpdateResponse is the response for config set.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the library config",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	key := normalizeKey(args[0])
	value := args[1]

	switch key {
	case "storage":
		if value != storage.BackendSQLite && value != storage.BackendPostgres {
			exitWithError(ExitError, "unknown storage backend: %s (expected %s or %s)",
				value, storage.BackendSQLite, storage.BackendPostgres)
		}
		cfg.Storage = value
	case "database-url":
		cfg.DatabaseURL = value
	case "ollama-url":
		cfg.OllamaURL = value
	case "model":
		cfg.Model = value
	case "embed-rps":
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil || rps <= 0 {
			exitWithError(ExitError, "embed-rps must be a positive number, got %q", value)
		}
		cfg.EmbedRPS = rps
	case "pdf-root":
		expanded := config.ExpandPath(value)
		if err := config.ValidatePDFRoot(expanded); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.PDFRoot = expanded
		value = expanded
	case "pdf-reader":
		if err := config.ValidatePDFReader(value); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		cfg.PDFReader = value
	case "user":
		cfg.User = value
	default:
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

var configSetLibraryCmd = &cobra.Command{
	Use:   "set-library <path>",
	Short: "Set the default library used outside any library directory",
	RunE:  runConfigSetLibrary,
	Args:  cobra.ExactArgs(1),
}

func runConfigSetLibrary(cmd *cobra.Command, args []string) error {
	path := config.ExpandPath(args[0])
	if !config.IsLibrary(path) {
		exitWithError(ExitConfigError, "%s is not a paperhub library (no %s directory)", path, config.LibraryDirName)
	}

	global, err := config.LoadGlobal()
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	global.LibraryPath = path
	if err := config.SaveGlobal(global); err != nil {
		exitWithError(ExitError, "saving global config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Default library set to %s\n", path)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: "library-path", Value: path})
	}
	return nil
}

func settingsValue(s *config.Settings, key string) (string, bool) {
	switch key {
	case "storage":
		return s.Storage, true
	case "database-url":
		return s.DatabaseURL, true
	case "ollama-url":
		return s.OllamaURL, true
	case "model":
		return s.Model, true
	case "embed-rps":
		return strconv.FormatFloat(s.EmbedRPS, 'f', -1, 64), true
	case "pdf-root":
		return s.PDFRoot, true
	case "pdf-reader":
		return s.PDFReader, true
	case "user":
		return s.User, true
	}
	return "", false
}

// normalizeKey converts key formats (pdf-root, pdf_root, PDFRoot) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
