package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/paper"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", DefaultListLimit, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Full-text search over titles, abstracts, and authors",
	Long: `Full-text search over titles, abstracts, and authors.

This is keyword search against the database index. For meaning-based
lookup use 'paperhub similar' or 'paperhub recommend'.

Examples:
  paperhub search transformer attention
  paperhub search "graph neural"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query   string        `json:"query"`
	Results []paper.Paper `json:"results"`
	Total   int           `json:"total"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := mustFindLibrary()
	settings := mustResolveSettings(root)

	store := mustOpenStore(ctx, settings)
	defer store.Close()

	query := strings.Join(args, " ")
	results, err := store.SearchPapers(ctx, query, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		if len(results) == 0 {
			fmt.Printf("No papers match %q\n", query)
			return nil
		}
		printPapersHuman(results)
		fmt.Printf("\n%d result(s) for %q\n", len(results), query)
	} else {
		outputJSON(SearchResponse{Query: query, Results: results, Total: len(results)})
	}

	return nil
}
