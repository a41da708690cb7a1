package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/embedding"
	"github.com/paperhub/paperhub/internal/importer"
	"github.com/paperhub/paperhub/internal/paper"
)

var (
	importDryRun      bool
	importTagCategory bool
	importEmbed       bool
)

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	importCmd.Flags().BoolVar(&importTagCategory, "tag-category", false, "Tag each imported paper with its arXiv category")
	importCmd.Flags().BoolVar(&importEmbed, "embed", false, "Embed imported papers after the import")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import papers from a JSON export",
	Long: `Import papers from a JSON export.

The file is a JSON array of paper objects, or JSON Lines as written by
'paperhub export --format jsonl'. Field types are forgiving: authors
may be an array or a single delimited string, published may be a
string or a bare year. Papers already in the library (matched by
arXiv id) are skipped, as are duplicates within the file itself.

Usage:
  paperhub import papers.json
  paperhub import papers.json --dry-run
  paperhub import papers.json --tag-category --embed`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult is the response for the import command.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Tagged   int      `json:"tagged"`
	Embedded int      `json:"embedded"`
	Errors   []string `json:"errors"`
}

// DryRunResult is the response for import --dry-run.
type DryRunResult struct {
	WouldImport int            `json:"would_import"`
	WouldSkip   int            `json:"would_skip"`
	Details     []ImportDetail `json:"details,omitempty"`
}

// ImportDetail describes what happens to a single incoming paper.
type ImportDetail struct {
	ArxivID string `json:"arxiv_id,omitempty"`
	Action  string `json:"action"` // import, skip
	Title   string `json:"title"`
	Reason  string `json:"reason,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	settings := mustResolveSettings(mustFindLibrary())
	store := mustOpenStore(ctx, settings)
	defer store.Close()

	// Check the backend before touching the library so a dead Ollama does
	// not leave a half-embedded import behind.
	var provider embedding.Provider
	if importEmbed && !importDryRun {
		provider = mustReadyProvider(ctx, settings)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading file: %v", err)
	}

	papers, parseErrors := importer.ParsePapers(data)
	if len(papers) == 0 && len(parseErrors) > 0 {
		if humanOutput {
			fmt.Fprintln(os.Stderr, "error: failed to parse any papers")
			for _, e := range parseErrors {
				fmt.Fprintf(os.Stderr, "  - %s\n", e)
			}
			os.Exit(ExitError)
		}
		exitWithError(ExitError, "failed to parse any papers")
	}

	// Classify first so --dry-run and the real import report the same
	// decisions. Duplicates inside the file count against the first copy.
	seen := make(map[string]bool)
	var toImport []paper.Paper
	var details []ImportDetail
	skipped := len(parseErrors)

	for _, p := range papers {
		detail := ImportDetail{
			ArxivID: p.ArxivID,
			Action:  "import",
			Title:   truncateString(p.Title, ListTitleMaxLen),
		}
		if p.ArxivID != "" {
			if seen[p.ArxivID] {
				detail.Action, detail.Reason = "skip", "duplicate_in_file"
			} else if existing, err := store.GetPaperByArxivID(ctx, p.ArxivID); err != nil {
				exitWithError(ExitError, "checking for existing paper: %v", err)
			} else if existing != nil {
				detail.Action, detail.Reason = "skip", "already_in_library"
			}
			seen[p.ArxivID] = true
		}
		if detail.Action == "import" {
			toImport = append(toImport, p)
		} else {
			skipped++
		}
		details = append(details, detail)
	}

	errStrs := make([]string, len(parseErrors))
	for i, e := range parseErrors {
		errStrs[i] = e.Error()
	}

	if importDryRun {
		if humanOutput {
			fmt.Printf("Dry run over %s...\n", args[0])
			fmt.Printf("  Would import: %d new paper(s)\n", len(toImport))
			fmt.Printf("  Would skip:   %d (errors or duplicates)\n", skipped)
			printParseErrors(errStrs)
		} else {
			outputJSON(DryRunResult{
				WouldImport: len(toImport),
				WouldSkip:   skipped,
				Details:     details,
			})
		}
		return nil
	}

	var created []paper.Paper
	var tagged int
	for i := range toImport {
		p := &toImport[i]
		if err := store.CreatePaper(ctx, p); err != nil {
			errStrs = append(errStrs, fmt.Sprintf("%s: %v", describePaper(p), err))
			skipped++
			continue
		}
		created = append(created, *p)
		if importTagCategory && p.Category != "" {
			if err := store.TagPaper(ctx, p.ID, p.Category); err != nil {
				errStrs = append(errStrs, fmt.Sprintf("tagging %s: %v", describePaper(p), err))
				continue
			}
			tagged++
		}
	}

	var embedded int
	if importEmbed && len(created) > 0 {
		gen := embedding.NewGenerator(provider, store)
		if humanOutput {
			gen.SetProgressReporter(embedding.ProgressFunc(printProgress))
		}
		stats, err := gen.Run(ctx, created)
		if humanOutput {
			clearProgress()
		}
		embedded = stats.Embedded
		if err != nil {
			errStrs = append(errStrs, fmt.Sprintf("embedding: %v", err))
		}
	}

	if humanOutput {
		fmt.Printf("Importing from %s...\n", args[0])
		fmt.Printf("  Imported: %d new paper(s)\n", len(created))
		fmt.Printf("  Skipped:  %d (errors or duplicates)\n", skipped)
		if importTagCategory {
			fmt.Printf("  Tagged:   %d\n", tagged)
		}
		if importEmbed {
			fmt.Printf("  Embedded: %d\n", embedded)
		}
		printParseErrors(errStrs)
	} else {
		outputJSON(ImportResult{
			Imported: len(created),
			Skipped:  skipped,
			Tagged:   tagged,
			Embedded: embedded,
			Errors:   errStrs,
		})
	}
	return nil
}

func printParseErrors(errStrs []string) {
	if len(errStrs) == 0 {
		return
	}
	fmt.Println("\nErrors:")
	for _, e := range errStrs {
		fmt.Printf("  - %s\n", e)
	}
}

func describePaper(p *paper.Paper) string {
	if p.ArxivID != "" {
		return p.ArxivID
	}
	return truncateString(p.Title, 40)
}
