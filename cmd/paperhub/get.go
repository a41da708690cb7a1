package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/arxiv"
	"github.com/paperhub/paperhub/internal/paper"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id|arxiv-id>",
	Short: "Get a single paper",
	Long: `Get a single paper by database id or arXiv id.

Examples:
  paperhub get 42
  paperhub get 1706.03762
  paperhub get https://arxiv.org/abs/1706.03762`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// GetResponse is the response for the get command.
type GetResponse struct {
	paper.Paper
	Tags []paper.Tag `json:"tags,omitempty"`
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := mustFindLibrary()
	settings := mustResolveSettings(root)

	store := mustOpenStore(ctx, settings)
	defer store.Close()

	p := resolvePaper(ctx, store, args[0])

	tags, err := store.PaperTags(ctx, p.ID)
	if err != nil {
		exitWithError(ExitError, "loading tags: %v", err)
	}

	if humanOutput {
		printPaperDetail(p, tags)
	} else {
		outputJSON(GetResponse{Paper: *p, Tags: tags})
	}

	return nil
}

func printPaperDetail(p *paper.Paper, tags []paper.Tag) {
	fmt.Printf("#%d", p.ID)
	if p.ArxivID != "" {
		fmt.Printf("  arXiv:%s", p.ArxivID)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("═", 70))
	fmt.Println()

	fmt.Printf("Title:    %s\n", wrapText(p.Title, TextWrapWidth, "          "))
	fmt.Println()

	if len(p.Authors) > 0 {
		fmt.Printf("Authors:  %s\n", wrapText(strings.Join(p.Authors, ", "), TextWrapWidth, "          "))
		fmt.Println()
	}

	if p.Category != "" {
		fmt.Printf("Category: %s (%s)\n", p.Category, arxiv.CategoryLabel(p.Category))
	}
	if p.Published != "" {
		fmt.Printf("Date:     %s\n", p.Published)
	}

	if p.Abstract != "" {
		fmt.Println()
		fmt.Println("Abstract:")
		fmt.Printf("  %s\n", wrapText(p.Abstract, DetailTextWrapWidth, "  "))
	}

	if p.PDFURL != "" || p.PDFPath != "" {
		fmt.Println()
		if p.PDFURL != "" {
			fmt.Printf("PDF URL:  %s\n", p.PDFURL)
		}
		if p.PDFPath != "" {
			fmt.Printf("PDF:      %s\n", p.PDFPath)
		}
	}

	fmt.Println()
	if p.VectorModel != "" {
		fmt.Printf("Vector:   %s (embedded %s)\n", p.VectorModel, p.EmbeddedAt.Format("2006-01-02 15:04"))
	} else {
		fmt.Println("Vector:   none")
	}

	if len(tags) > 0 {
		names := make([]string, len(tags))
		for i, t := range tags {
			names[i] = t.Name
		}
		fmt.Printf("Tags:     %s\n", strings.Join(names, ", "))
	}
}
