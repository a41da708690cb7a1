package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/arxiv"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store := mustOpenStore(ctx, mustResolveSettings(mustFindLibrary()))
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		exitWithError(ExitError, "collecting stats: %v", err)
	}

	if !humanOutput {
		outputJSON(stats)
		return nil
	}

	fmt.Printf("Library statistics:\n\n")
	fmt.Printf("Papers:\n")
	fmt.Printf("  Total: %d\n", stats.Papers)
	fmt.Printf("  With vectors: %d\n", stats.WithVectors)
	fmt.Printf("  Tagged: %d\n", stats.TaggedPapers)
	fmt.Printf("\nTags: %d\n", stats.Tags)
	fmt.Printf("\nReading:\n")
	fmt.Printf("  Reads recorded: %d\n", stats.Reads)
	fmt.Printf("  Readers: %d\n", stats.Readers)

	if len(stats.Categories) > 0 {
		fmt.Printf("\nCategories:\n")
		for _, c := range stats.Categories {
			label := ""
			if l := arxiv.CategoryLabel(c.Category); l != c.Category {
				label = l
			}
			fmt.Printf("  %-12s %-28s %d\n", c.Category, label, c.Count)
		}
	}
	return nil
}
