package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/embedding"
	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/storage"
)

var (
	embedStale      bool
	embedForce      bool
	embedRPS        float64
	embedNoProgress bool
)

func init() {
	embedCmd.Flags().BoolVar(&embedStale, "stale", false, "Also re-embed papers whose text changed since embedding")
	embedCmd.Flags().BoolVar(&embedForce, "force", false, "Re-embed every paper, current or not")
	embedCmd.Flags().Float64Var(&embedRPS, "rps", embedding.DefaultEmbedRPS, "Backend requests per second (0 disables limiting)")
	embedCmd.Flags().BoolVar(&embedNoProgress, "no-progress", false, "Suppress the progress bar")
	rootCmd.AddCommand(embedCmd)
}

// EmbedResult is the response for the embed command.
type EmbedResult struct {
	Status          string  `json:"status"`
	Candidates      int     `json:"candidates"`
	Embedded        int     `json:"embedded"`
	Skipped         int     `json:"skipped"`
	DurationSeconds float64 `json:"duration_seconds"`
	Model           string  `json:"model"`
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate vectors for papers that lack one",
	Long: `Generate vectors for papers that lack one.

By default only papers without a vector are embedded. --stale also
re-embeds papers whose title or abstract changed since their vector
was computed, and papers embedded with a different model than the
configured one. --force re-embeds everything.`,
	RunE: runEmbed,
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	settings := mustResolveSettings(mustFindLibrary())
	store := mustOpenStore(ctx, settings)
	defer store.Close()

	provider := mustReadyProvider(ctx, settings)

	candidates, err := embedCandidates(ctx, store, settings.Model)
	if err != nil {
		exitWithError(ExitError, "selecting papers to embed: %v", err)
	}
	if len(candidates) == 0 {
		if humanOutput {
			fmt.Println("All vectors are up to date.")
		} else {
			outputJSON(EmbedResult{Status: "up_to_date", Model: settings.Model})
		}
		return nil
	}

	gen := embedding.NewGenerator(provider, store)
	rps := settings.EmbedRPS
	if cmd.Flags().Changed("rps") {
		rps = embedRPS
	}
	gen.SetRPS(rps)
	if humanOutput && !embedNoProgress {
		gen.SetProgressReporter(embedding.ProgressFunc(printProgress))
	}

	stats, runErr := gen.Run(ctx, candidates)
	if humanOutput && !embedNoProgress {
		clearProgress()
	}
	if runErr != nil {
		code := ExitError
		if errors.Is(runErr, embedding.ErrBackendUnavailable) {
			code = ExitBackendUnavailable
		}
		exitWithError(code, "embedding stopped after %d of %d papers: %v",
			stats.Embedded, len(candidates), runErr)
	}

	if humanOutput {
		fmt.Printf("Embedded %d paper(s) in %s", stats.Embedded, formatDuration(stats.Duration))
		if stats.Skipped > 0 {
			fmt.Printf(" (%d skipped)", stats.Skipped)
		}
		fmt.Println()
	} else {
		outputJSON(EmbedResult{
			Status:          "embedded",
			Candidates:      len(candidates),
			Embedded:        stats.Embedded,
			Skipped:         stats.Skipped,
			DurationSeconds: stats.Duration.Seconds(),
			Model:           settings.Model,
		})
	}
	return nil
}

// embedCandidates picks the papers the flags ask for: everything under
// --force, otherwise the missing (and with --stale, outdated) ones.
func embedCandidates(ctx context.Context, store storage.Store, model string) ([]paper.Paper, error) {
	if embedForce {
		return store.ListPapers(ctx, storage.Filters{})
	}
	return storage.EmbedCandidates(ctx, store, model, embedStale)
}
