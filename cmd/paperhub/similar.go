package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/recommend"
)

var similarLimit int

func init() {
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "l", recommend.DefaultLimit, "Maximum results")
	rootCmd.AddCommand(similarCmd)
}

// SimilarResponse is the response for the similar command.
type SimilarResponse struct {
	Source  PaperRef      `json:"source"`
	Results []paper.Match `json:"results"`
	Total   int           `json:"total"`
	Model   string        `json:"model"`
}

var similarCmd = &cobra.Command{
	Use:   "similar <paper>",
	Short: "Find papers similar to a given one",
	Long: `Find papers similar to a given one.

Similarity is cosine similarity between stored vectors, so both the
source paper and the candidates must have been embedded. Papers
without a vector never appear in the results.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	settings := mustResolveSettings(mustFindLibrary())
	store := mustOpenStore(ctx, settings)
	defer store.Close()

	p := resolvePaper(ctx, store, args[0])
	if !p.HasVector() {
		exitWithError(ExitNoVector,
			"paper #%d has no vector; run 'paperhub embed' first", p.ID)
	}

	rec := recommend.New(store, store)
	matches, err := rec.ByPaper(ctx, p.ID, similarLimit)
	if err != nil {
		exitWithError(ExitError, "finding similar papers: %v", err)
	}

	if humanOutput {
		fmt.Printf("Similar to #%d %s\n\n", p.ID, truncateString(p.Title, ListTitleMaxLen))
		if len(matches) == 0 {
			fmt.Println("No other embedded papers in the library.")
			return nil
		}
		printMatchesHuman(matches)
	} else {
		outputJSON(SimilarResponse{
			Source:  paperRef(p),
			Results: matches,
			Total:   len(matches),
			Model:   settings.Model,
		})
	}
	return nil
}
