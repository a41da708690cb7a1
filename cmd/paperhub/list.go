package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/storage"
)

var (
	listCategory string
	listTag      string
	listFrom     string
	listTo       string
	listLimit    int
	listOffset   int
)

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by arXiv category")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag name")
	listCmd.Flags().StringVar(&listFrom, "from", "", "Published on or after (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "Published on or before (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", DefaultListLimit, "Maximum number of papers")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of papers to skip")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers in the library",
	Long: `List papers in the library, newest first.

Examples:
  paperhub list
  paperhub list --category cs.LG --limit 20
  paperhub list --tag to-read --from 2023-01-01`,
	RunE: runList,
}

// ListResponse is the response for the list command.
type ListResponse struct {
	Papers []paper.Paper `json:"papers"`
	Count  int           `json:"count"`
	Total  int           `json:"total"`
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := mustFindLibrary()
	settings := mustResolveSettings(root)

	store := mustOpenStore(ctx, settings)
	defer store.Close()

	papers, err := store.ListPapers(ctx, storage.Filters{
		Category: listCategory,
		Tag:      listTag,
		From:     listFrom,
		To:       listTo,
		Limit:    listLimit,
		Offset:   listOffset,
	})
	if err != nil {
		exitWithError(ExitError, "listing papers: %v", err)
	}

	total, err := store.CountPapers(ctx)
	if err != nil {
		exitWithError(ExitError, "counting papers: %v", err)
	}

	if humanOutput {
		printPapersHuman(papers)
		fmt.Printf("\n%d of %d papers\n", len(papers), total)
	} else {
		outputJSON(ListResponse{Papers: papers, Count: len(papers), Total: total})
	}

	return nil
}
