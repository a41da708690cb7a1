package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/arxiv"
	"github.com/paperhub/paperhub/internal/embedding"
	"github.com/paperhub/paperhub/internal/importer"
	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/pdf"
	"github.com/paperhub/paperhub/internal/storage"
)

var (
	addArxiv     string
	addTitle     string
	addAuthors   string
	addAbstract  string
	addCategory  string
	addPublished string
	addPDFURL    string
	addPDF       string
	addTags      []string
	addEmbed     bool
)

func init() {
	addCmd.Flags().StringVar(&addArxiv, "arxiv", "", "arXiv id or URL")
	addCmd.Flags().StringVar(&addTitle, "title", "", "Paper title")
	addCmd.Flags().StringVar(&addAuthors, "authors", "", "Authors (comma, semicolon, or ' and ' separated)")
	addCmd.Flags().StringVar(&addAbstract, "abstract", "", "Abstract text")
	addCmd.Flags().StringVar(&addCategory, "category", "", "arXiv category code (e.g. cs.LG)")
	addCmd.Flags().StringVar(&addPublished, "published", "", "Publication date (YYYY-MM-DD, YYYY-MM, or YYYY)")
	addCmd.Flags().StringVar(&addPDFURL, "pdf-url", "", "Remote PDF URL")
	addCmd.Flags().StringVar(&addPDF, "pdf", "", "Local PDF to record and sniff for id/title")
	addCmd.Flags().StringArrayVar(&addTags, "tag", nil, "Tag to attach (repeatable)")
	addCmd.Flags().BoolVar(&addEmbed, "embed", false, "Embed the paper immediately after adding")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a paper to the library",
	Long: `Add a paper to the library.

Examples:
  paperhub add --arxiv 1706.03762 --title "Attention Is All You Need" \
      --authors "Ashish Vaswani, Noam Shazeer" --category cs.CL
  paperhub add --pdf ~/downloads/paper.pdf --tag to-read
  paperhub add --title "Internal Tech Report" --abstract "..." --embed

With --pdf, the first pages are scanned for an arXiv stamp and a title
when those flags are not given.`,
	RunE: runAdd,
}

// AddResult is the response for the add command.
type AddResult struct {
	Paper    paper.Paper `json:"paper"`
	Tags     []string    `json:"tags,omitempty"`
	Embedded bool        `json:"embedded"`
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := mustFindLibrary()
	settings := mustResolveSettings(root)

	p := paper.Paper{
		Title:     paper.CleanText(addTitle),
		Abstract:  paper.CleanText(addAbstract),
		Category:  addCategory,
		Published: addPublished,
		PDFURL:    addPDFURL,
	}
	if addAuthors != "" {
		p.Authors = importer.SplitAuthorList(addAuthors)
	}
	if addArxiv != "" {
		p.ArxivID = mustParseArxivID(addArxiv)
	}

	if addPDF != "" {
		sniffPDF(&p, addPDF)
	}

	if p.Title == "" {
		exitWithError(ExitError, "a title is required (give --title or a --pdf with a readable title)")
	}

	store := mustOpenStore(ctx, settings)
	defer store.Close()

	if err := store.CreatePaper(ctx, &p); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			exitWithError(ExitError, "paper with arXiv id %s is already in the library", p.ArxivID)
		}
		exitWithError(ExitError, "adding paper: %v", err)
	}

	var attached []string
	for _, tag := range addTags {
		if err := store.TagPaper(ctx, p.ID, tag); err != nil {
			exitWithError(ExitError, "tagging paper with %q: %v", tag, err)
		}
		attached = append(attached, tag)
	}

	embedded := false
	if addEmbed {
		rec, err := embedding.EmbedPaper(ctx, lazyProvider(settings), &p)
		if err != nil {
			code := ExitError
			if errors.Is(err, embedding.ErrBackendUnavailable) {
				code = ExitBackendUnavailable
			}
			exitWithError(code, "embedding paper: %v", err)
		}
		if err := store.SetPaperVector(ctx, p.ID, rec); err != nil {
			exitWithError(ExitError, "storing vector: %v", err)
		}
		embedded = true
	}

	if humanOutput {
		fmt.Printf("Added paper #%d\n", p.ID)
		fmt.Println(paperLine(&p))
		if len(attached) > 0 {
			fmt.Printf("Tags: %v\n", attached)
		}
		if embedded {
			fmt.Println("Embedded with", settings.Model)
		}
	} else {
		outputJSON(AddResult{Paper: p, Tags: attached, Embedded: embedded})
	}

	return nil
}

// sniffPDF fills gaps in the paper from a local PDF and records its path.
func sniffPDF(p *paper.Paper, path string) {
	p.PDFPath = path

	if p.ArxivID == "" {
		id, err := pdf.ExtractArxivID(path)
		if err != nil {
			exitWithError(ExitError, "reading PDF: %v", err)
		}
		p.ArxivID = id
	}

	if p.Title == "" {
		title, err := pdf.ExtractTitle(path)
		if err != nil {
			exitWithError(ExitError, "reading PDF: %v", err)
		}
		p.Title = title
	}
}

// mustParseArxivID extracts a well-formed arXiv id from a flag value.
func mustParseArxivID(s string) string {
	id := arxiv.ExtractID(s)
	if id == "" {
		exitWithError(ExitError, "unrecognized arXiv id: %s", s)
	}
	return id
}
