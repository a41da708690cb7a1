package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/storage"
)

var tagDescription string

func init() {
	tagAddCmd.Flags().StringVar(&tagDescription, "description", "", "Tag description")

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRmCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagAttachCmd)
	tagCmd.AddCommand(tagDetachCmd)
	rootCmd.AddCommand(tagCmd)
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags and their attachments",
	Long: `Manage tags and their attachments.

Examples:
  paperhub tag add to-read
  paperhub tag attach 42 to-read
  paperhub tag list
  paperhub tag detach 42 to-read
  paperhub tag rm to-read`,
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagAdd,
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store := mustOpenStore(ctx, mustResolveSettings(mustFindLibrary()))
	defer store.Close()

	t := paper.Tag{Name: args[0], Description: tagDescription}
	if err := store.CreateTag(ctx, &t); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			exitWithError(ExitError, "tag %q already exists", t.Name)
		}
		exitWithError(ExitError, "creating tag: %v", err)
	}

	if humanOutput {
		fmt.Printf("Created tag %q\n", t.Name)
	} else {
		outputJSON(t)
	}
	return nil
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a tag and its attachments",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagRm,
}

func runTagRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store := mustOpenStore(ctx, mustResolveSettings(mustFindLibrary()))
	defer store.Close()

	if err := store.DeleteTag(ctx, args[0]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			exitWithError(ExitNotFound, "tag not found: %s", args[0])
		}
		exitWithError(ExitError, "deleting tag: %v", err)
	}

	if humanOutput {
		fmt.Printf("Deleted tag %q\n", args[0])
	} else {
		outputJSON(StatusResponse{Status: "deleted"})
	}
	return nil
}

// TagListResponse is the response for tag list.
type TagListResponse struct {
	Tags  []paper.Tag `json:"tags"`
	Total int         `json:"total"`
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags with paper counts",
	RunE:  runTagList,
}

func runTagList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store := mustOpenStore(ctx, mustResolveSettings(mustFindLibrary()))
	defer store.Close()

	tags, err := store.ListTags(ctx)
	if err != nil {
		exitWithError(ExitError, "listing tags: %v", err)
	}

	if humanOutput {
		for _, t := range tags {
			fmt.Printf("%-20s %d paper(s)", t.Name, t.PaperCount)
			if t.Description != "" {
				fmt.Printf("  %s", t.Description)
			}
			fmt.Println()
		}
	} else {
		outputJSON(TagListResponse{Tags: tags, Total: len(tags)})
	}
	return nil
}

var tagAttachCmd = &cobra.Command{
	Use:   "attach <paper> <tag>",
	Short: "Attach a tag to a paper (creating the tag if needed)",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagAttach,
}

func runTagAttach(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store := mustOpenStore(ctx, mustResolveSettings(mustFindLibrary()))
	defer store.Close()

	p := resolvePaper(ctx, store, args[0])
	if err := store.TagPaper(ctx, p.ID, args[1]); err != nil {
		exitWithError(ExitError, "tagging paper: %v", err)
	}

	if humanOutput {
		fmt.Printf("Tagged paper #%d with %q\n", p.ID, args[1])
	} else {
		outputJSON(StatusResponse{Status: "tagged"})
	}
	return nil
}

var tagDetachCmd = &cobra.Command{
	Use:   "detach <paper> <tag>",
	Short: "Remove a tag from a paper",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagDetach,
}

func runTagDetach(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store := mustOpenStore(ctx, mustResolveSettings(mustFindLibrary()))
	defer store.Close()

	p := resolvePaper(ctx, store, args[0])
	if err := store.UntagPaper(ctx, p.ID, args[1]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			exitWithError(ExitNotFound, "paper #%d is not tagged %q", p.ID, args[1])
		}
		exitWithError(ExitError, "untagging paper: %v", err)
	}

	if humanOutput {
		fmt.Printf("Removed %q from paper #%d\n", args[1], p.ID)
	} else {
		outputJSON(StatusResponse{Status: "untagged"})
	}
	return nil
}
