package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/export"
	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/storage"
)

var (
	exportFormat   string
	exportOutput   string
	exportAppend   bool
	exportCategory string
	exportTag      string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format (bibtex, jsonl)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	exportCmd.Flags().BoolVar(&exportAppend, "append", false, "Append to the output file, skipping entries it already has (bibtex only)")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "Export only papers in this arXiv category")
	exportCmd.Flags().StringVar(&exportTag, "tag", "", "Export only papers with this tag")
	exportCmd.MarkFlagRequired("format")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export papers to BibTeX or JSONL",
	Long: `Export papers to BibTeX or JSONL.

arXiv papers become @misc entries with eprint and primaryClass fields;
papers without an arXiv id become @article. --append deduplicates
against the target .bib file by citation key and eprint, so repeated
exports never produce duplicate entries.

Examples:
  paperhub export --format bibtex > library.bib
  paperhub export --format bibtex --output refs.bib --append
  paperhub export --format jsonl --category cs.LG --output lg.jsonl`,
	RunE: runExport,
}

// ExportResult is the response for export when writing to a file.
type ExportResult struct {
	Status   string `json:"status"`
	Format   string `json:"format"`
	Path     string `json:"path"`
	Exported int    `json:"exported"`
	Skipped  int    `json:"skipped,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "bibtex" && exportFormat != "jsonl" {
		exitWithError(ExitError, "unknown format: %s (expected bibtex or jsonl)", exportFormat)
	}
	if exportAppend && exportFormat != "bibtex" {
		exitWithError(ExitError, "--append only supports bibtex")
	}
	if exportAppend && exportOutput == "" {
		exitWithError(ExitError, "--append requires --output")
	}

	ctx := context.Background()
	store := mustOpenStore(ctx, mustResolveSettings(mustFindLibrary()))
	defer store.Close()

	papers, err := store.ListPapers(ctx, storage.Filters{
		Category: exportCategory,
		Tag:      exportTag,
	})
	if err != nil {
		exitWithError(ExitError, "listing papers: %v", err)
	}

	if exportAppend {
		return appendBibTeX(exportOutput, papers)
	}

	document, err := renderExport(papers)
	if err != nil {
		exitWithError(ExitError, "rendering export: %v", err)
	}

	if exportOutput == "" {
		// Exports are always raw documents on stdout, never JSON wrapped.
		fmt.Print(document)
		return nil
	}

	if err := os.WriteFile(exportOutput, []byte(document), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", exportOutput, err)
	}
	reportExport(ExportResult{
		Status:   "exported",
		Format:   exportFormat,
		Path:     exportOutput,
		Exported: len(papers),
	})
	return nil
}

func renderExport(papers []paper.Paper) (string, error) {
	if exportFormat == "bibtex" {
		return export.ToBibTeXList(papers), nil
	}
	var buf bytes.Buffer
	if err := export.WriteJSONL(&buf, papers); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// appendBibTeX adds only the papers the target file does not already hold,
// matched by citation key or eprint.
func appendBibTeX(path string, papers []paper.Paper) error {
	index, err := export.ParseBibTeXFile(path)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	var fresh []paper.Paper
	for _, p := range papers {
		if index.HasEntry(export.CitationKey(p), p.ArxivID) {
			continue
		}
		fresh = append(fresh, p)
	}

	skipped := len(papers) - len(fresh)
	if len(fresh) == 0 {
		reportExport(ExportResult{
			Status:  "up_to_date",
			Format:  exportFormat,
			Path:    path,
			Skipped: skipped,
		})
		return nil
	}

	if err := export.AppendToBibFile(path, export.ToBibTeXList(fresh)); err != nil {
		exitWithError(ExitError, "appending to %s: %v", path, err)
	}
	reportExport(ExportResult{
		Status:   "exported",
		Format:   exportFormat,
		Path:     path,
		Exported: len(fresh),
		Skipped:  skipped,
	})
	return nil
}

func reportExport(result ExportResult) {
	if humanOutput {
		switch result.Status {
		case "up_to_date":
			fmt.Printf("%s is up to date (%d entries already present)\n", result.Path, result.Skipped)
		default:
			fmt.Printf("Exported %d paper(s) to %s", result.Exported, result.Path)
			if result.Skipped > 0 {
				fmt.Printf(" (%d already present)", result.Skipped)
			}
			fmt.Println()
		}
		return
	}
	outputJSON(result)
}
