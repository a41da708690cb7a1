package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/paper"
)

var (
	readUser   string
	readRating int
	readNotes  string
)

func init() {
	readCmd.Flags().StringVar(&readUser, "user", "", "Reader identity (defaults to the configured user)")
	readCmd.Flags().IntVar(&readRating, "rating", 0, "Rating from 1 to 5")
	readCmd.Flags().StringVar(&readNotes, "notes", "", "Free-form notes")
	rootCmd.AddCommand(readCmd)
}

var readCmd = &cobra.Command{
	Use:   "read <paper>",
	Short: "Record that a paper was read",
	Long: `Record that a paper was read.

Reading history feeds the recommend command: the papers a user has
read define their interest profile, and nothing already read is ever
recommended again. Ratings and notes are kept for the history view.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	settings := mustResolveSettings(mustFindLibrary())
	store := mustOpenStore(ctx, settings)
	defer store.Close()

	user := readUser
	if user == "" {
		user = settings.User
	}
	if readRating < 0 || readRating > 5 {
		exitWithError(ExitError, "rating must be between 1 and 5")
	}

	p := resolvePaper(ctx, store, args[0])
	entry := paper.ReadingEntry{
		PaperID: p.ID,
		UserID:  user,
		Rating:  readRating,
		Notes:   readNotes,
	}
	if err := store.RecordRead(ctx, &entry); err != nil {
		exitWithError(ExitError, "recording read: %v", err)
	}

	if humanOutput {
		fmt.Printf("Recorded read of #%d for %s", p.ID, user)
		if entry.Rating > 0 {
			fmt.Printf(" (rating %d)", entry.Rating)
		}
		fmt.Println()
	} else {
		outputJSON(entry)
	}
	return nil
}
