package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/storage"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id|arxiv-id>",
	Short: "Delete a paper and everything attached to it",
	Long: `Delete a paper. Its vector, tag attachments, and reading history
entries go with it.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

// DeleteResult is the response for the delete command.
type DeleteResult struct {
	Status string   `json:"status"`
	Paper  PaperRef `json:"paper"`
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := mustFindLibrary()
	settings := mustResolveSettings(root)

	store := mustOpenStore(ctx, settings)
	defer store.Close()

	p := resolvePaper(ctx, store, args[0])

	if err := store.DeletePaper(ctx, p.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			exitWithError(ExitNotFound, "paper not found: %s", args[0])
		}
		exitWithError(ExitError, "deleting paper: %v", err)
	}

	if humanOutput {
		fmt.Printf("Deleted paper #%d: %s\n", p.ID, truncateString(p.Title, ListTitleMaxLen))
	} else {
		outputJSON(DeleteResult{Status: "deleted", Paper: paperRef(p)})
	}

	return nil
}
