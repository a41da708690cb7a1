package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/paper"
)

var (
	historyUser  string
	historyLimit int
)

func init() {
	historyCmd.Flags().StringVar(&historyUser, "user", "", "Reader identity (defaults to the configured user)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", DefaultListLimit, "Maximum entries to show")
	rootCmd.AddCommand(historyCmd)
}

// HistoryResponse is the response for the history command.
type HistoryResponse struct {
	User    string               `json:"user"`
	Entries []paper.ReadingEntry `json:"entries"`
	Total   int                  `json:"total"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a user's reading history, most recent first",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	settings := mustResolveSettings(mustFindLibrary())
	store := mustOpenStore(ctx, settings)
	defer store.Close()

	user := historyUser
	if user == "" {
		user = settings.User
	}

	entries, err := store.ListHistory(ctx, user, historyLimit)
	if err != nil {
		exitWithError(ExitError, "listing history: %v", err)
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Printf("No reading history for %s\n", user)
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  #%-5d %s", e.ReadAt.Format("2006-01-02"), e.PaperID,
				truncateString(e.PaperTitle, ListTitleMaxLen))
			if e.Rating > 0 {
				line += fmt.Sprintf("  [%d/5]", e.Rating)
			}
			fmt.Println(line)
			if e.Notes != "" {
				fmt.Printf("            %s\n", truncateString(e.Notes, ListTitleMaxLen))
			}
		}
	} else {
		outputJSON(HistoryResponse{User: user, Entries: entries, Total: len(entries)})
	}
	return nil
}
