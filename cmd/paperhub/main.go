// Package main provides the paperhub CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/arxiv"
	"github.com/paperhub/paperhub/internal/config"
	"github.com/paperhub/paperhub/internal/embedding"
	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paperhub",
	Short: "Embedding-backed paper library and recommender",
	Long: `paperhub manages a local library of academic papers and recommends
what to read next.

Papers live in SQLite (or Postgres with pgvector) together with embedding
vectors produced by a local Ollama model. Recommendations rank the library
by cosine similarity against a paper, against your recent reading, or a
blend of both.

All commands output JSON by default for scripting and agent integration.
Pass --human for terminal-friendly text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustFindLibrary locates the library root, exits on error.
func mustFindLibrary() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.FindLibrary(cwd)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulLibraryMessage())
		os.Exit(ExitConfigError)
	}
	return root
}

// mustResolveSettings loads the merged configuration for a library root,
// exits on error.
func mustResolveSettings(root string) *config.Settings {
	settings, err := config.Resolve(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return settings
}

// mustOpenStore opens the configured storage backend, exits on error.
// The caller is responsible for calling Close() on the returned store.
func mustOpenStore(ctx context.Context, settings *config.Settings) storage.Store {
	store, err := storage.Open(ctx, storage.Config{
		Backend:     settings.Storage,
		Path:        config.DBPath(settings.Root),
		DatabaseURL: settings.DatabaseURL,
		Model:       settings.Model,
	})
	if err != nil {
		exitWithError(ExitError, "opening storage: %v", err)
	}
	return store
}

// mustReadyProvider builds the Ollama provider and verifies it can serve
// the configured model, exits otherwise.
func mustReadyProvider(ctx context.Context, settings *config.Settings) *embedding.OllamaProvider {
	provider := embedding.NewOllamaProvider(
		embedding.WithBaseURL(settings.OllamaURL),
		embedding.WithModel(settings.Model),
	)

	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitBackendUnavailable, "Ollama is not reachable at %s\n\nStart it with 'ollama serve' or install from https://ollama.ai", settings.OllamaURL)
	}

	hasModel, err := provider.HasModel(ctx)
	if err != nil {
		exitWithError(ExitError, "checking model availability: %v", err)
	}
	if !hasModel {
		exitWithError(ExitBackendUnavailable, "embedding model %q not found\n\nRun 'ollama pull %s' to download it.", settings.Model, settings.Model)
	}

	return provider
}

// lazyProvider builds the Ollama provider with the readiness check deferred
// to the first embed call. One-shot embed paths use this; bulk paths call
// mustReadyProvider to fail before any work starts.
func lazyProvider(settings *config.Settings) *embedding.Lazy {
	return embedding.NewLazy(embedding.NewOllamaProvider(
		embedding.WithBaseURL(settings.OllamaURL),
		embedding.WithModel(settings.Model),
	))
}

// resolvePaper looks a paper up by database id or arXiv id, exiting with
// ExitNotFound when it does not exist.
func resolvePaper(ctx context.Context, store storage.Store, ref string) *paper.Paper {
	var p *paper.Paper
	var err error

	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		p, err = store.GetPaper(ctx, id)
	} else if arxivID := arxiv.ExtractID(ref); arxivID != "" {
		p, err = store.GetPaperByArxivID(ctx, arxivID)
	} else {
		exitWithError(ExitError, "%q is neither a paper id nor an arXiv id", ref)
	}

	if err != nil {
		exitWithError(ExitError, "looking up paper %s: %v", ref, err)
	}
	if p == nil {
		exitWithError(ExitNotFound, "paper not found: %s", ref)
	}
	return p
}
