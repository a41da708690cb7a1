package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/importer"
	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/storage"
)

var (
	updateTitle     string
	updateAuthors   string
	updateAbstract  string
	updateCategory  string
	updatePublished string
	updatePDFURL    string
	updatePDFPath   string
	updateArxiv     string
)

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updateAuthors, "authors", "", "New author list")
	updateCmd.Flags().StringVar(&updateAbstract, "abstract", "", "New abstract")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "New category")
	updateCmd.Flags().StringVar(&updatePublished, "published", "", "New publication date")
	updateCmd.Flags().StringVar(&updatePDFURL, "pdf-url", "", "New PDF URL")
	updateCmd.Flags().StringVar(&updatePDFPath, "pdf-path", "", "New local PDF path")
	updateCmd.Flags().StringVar(&updateArxiv, "arxiv", "", "New arXiv id")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update <id|arxiv-id>",
	Short: "Update a paper's metadata",
	Long: `Update a paper's metadata. Only the given flags change; everything
else keeps its value. The stored vector is untouched, so a title or
abstract edit leaves it stale until the next 'paperhub embed --stale'.

Examples:
  paperhub update 42 --category cs.LG
  paperhub update 1706.03762 --abstract "Revised abstract..."`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := mustFindLibrary()
	settings := mustResolveSettings(root)

	store := mustOpenStore(ctx, settings)
	defer store.Close()

	p := resolvePaper(ctx, store, args[0])

	changed := false
	if cmd.Flags().Changed("title") {
		p.Title = paper.CleanText(updateTitle)
		changed = true
	}
	if cmd.Flags().Changed("authors") {
		p.Authors = importer.SplitAuthorList(updateAuthors)
		changed = true
	}
	if cmd.Flags().Changed("abstract") {
		p.Abstract = paper.CleanText(updateAbstract)
		changed = true
	}
	if cmd.Flags().Changed("category") {
		p.Category = updateCategory
		changed = true
	}
	if cmd.Flags().Changed("published") {
		p.Published = updatePublished
		changed = true
	}
	if cmd.Flags().Changed("pdf-url") {
		p.PDFURL = updatePDFURL
		changed = true
	}
	if cmd.Flags().Changed("pdf-path") {
		p.PDFPath = updatePDFPath
		changed = true
	}
	if cmd.Flags().Changed("arxiv") {
		p.ArxivID = mustParseArxivID(updateArxiv)
		changed = true
	}

	if !changed {
		exitWithError(ExitError, "nothing to update (give at least one field flag)")
	}

	if err := store.UpdatePaper(ctx, p); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			exitWithError(ExitError, "another paper already has arXiv id %s", p.ArxivID)
		case errors.Is(err, storage.ErrNotFound):
			exitWithError(ExitNotFound, "paper not found: %s", args[0])
		}
		exitWithError(ExitError, "updating paper: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated paper #%d\n", p.ID)
		fmt.Println(paperLine(p))
	} else {
		outputJSON(p)
	}

	return nil
}
