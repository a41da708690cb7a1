package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/config"
	"github.com/paperhub/paperhub/internal/pdf"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <paper>",
	Short: "Open a paper's PDF in the configured viewer",
	Long: `Open a paper's PDF in the configured viewer.

Relative PDF paths resolve against the configured pdf_root; absolute
paths are used as-is.

Examples:
  paperhub open 42
  paperhub open 2301.00001`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

// OpenResult is the response for the open command.
type OpenResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	settings := mustResolveSettings(mustFindLibrary())
	store := mustOpenStore(ctx, settings)
	defer store.Close()

	p := resolvePaper(ctx, store, args[0])
	if p.PDFPath == "" {
		exitWithError(ExitError, "no PDF path for paper #%d; set one with 'paperhub update %d --pdf <path>'", p.ID, p.ID)
	}

	opener := pdf.NewOpener(config.ExpandPath(settings.PDFRoot), settings.PDFReader)
	fullPath, err := opener.ResolvePath(p.PDFPath)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := opener.Open(fullPath); err != nil {
		exitWithError(ExitError, "opening PDF: %v", err)
	}

	if humanOutput {
		fmt.Printf("Opening: %s\n", fullPath)
	} else {
		outputJSON(OpenResult{Status: "opened", Path: fullPath})
	}
	return nil
}
