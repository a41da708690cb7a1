package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/recommend"
)

var (
	recommendUser    string
	recommendLimit   int
	recommendWindow  int
	recommendCurrent string
)

func init() {
	recommendCmd.Flags().StringVar(&recommendUser, "user", "", "Reader identity (defaults to the configured user)")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "l", recommend.DefaultLimit, "Maximum results")
	recommendCmd.Flags().IntVar(&recommendWindow, "window", recommend.DefaultHistoryWindow, "Recent reads that build the history centroid")
	recommendCmd.Flags().StringVar(&recommendCurrent, "current", "", "Blend in the paper being viewed (id or arXiv id)")
	rootCmd.AddCommand(recommendCmd)
}

// RecommendResponse is the response for the recommend command.
type RecommendResponse struct {
	Strategy string        `json:"strategy"`
	User     string        `json:"user"`
	Current  *PaperRef     `json:"current,omitempty"`
	Results  []paper.Match `json:"results"`
	Total    int           `json:"total"`
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend papers from reading history",
	Long: `Recommend papers from reading history.

Without flags the query vector is the centroid of the user's recent
reads (--window sets how many), and everything already read is
excluded. With --current the query blends the given paper's vector
with the history centroid, favoring the paper; use it while reading
to surface related work.`,
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	settings := mustResolveSettings(mustFindLibrary())
	store := mustOpenStore(ctx, settings)
	defer store.Close()

	user := recommendUser
	if user == "" {
		user = settings.User
	}
	rec := recommend.New(store, store)

	var (
		matches  []paper.Match
		err      error
		strategy = "history"
		current  *PaperRef
	)
	if recommendCurrent != "" {
		p := resolvePaper(ctx, store, recommendCurrent)
		if !p.HasVector() {
			exitWithError(ExitNoVector,
				"paper #%d has no vector; run 'paperhub embed' first", p.ID)
		}
		strategy = "hybrid"
		ref := paperRef(p)
		current = &ref
		matches, err = rec.Hybrid(ctx, p.ID, user, recommendLimit)
	} else {
		matches, err = rec.ByHistory(ctx, user, recommendLimit, recommendWindow)
	}
	if err != nil {
		exitWithError(ExitError, "recommending papers: %v", err)
	}

	if humanOutput {
		if len(matches) == 0 {
			fmt.Printf("Nothing to recommend for %s yet. Read some papers first:\n", user)
			fmt.Println("  paperhub read <paper> --rating 5")
			return nil
		}
		fmt.Printf("Recommendations for %s (%s)\n\n", user, strategy)
		printMatchesHuman(matches)
	} else {
		outputJSON(RecommendResponse{
			Strategy: strategy,
			User:     user,
			Current:  current,
			Results:  matches,
			Total:    len(matches),
		})
	}
	return nil
}
