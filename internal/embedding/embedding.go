// Package embedding provides vector embedding generation for paper text.
package embedding

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/vector"
)

// MaxAbstractRunes caps how much of an abstract participates in the
// embedding text. all-minilm truncates long inputs anyway; the cap keeps the
// embedded text, and therefore its hash, stable.
const MaxAbstractRunes = 500

// ErrBackendUnavailable indicates the embedding backend could not be reached
// or its model could not be loaded. Callers decide whether to retry; nothing
// in this package does.
var ErrBackendUnavailable = errors.New("embedding backend unavailable")

// Record pairs a generated vector with its provenance: the model that
// produced it and the hash of the text it was produced from.
type Record struct {
	Vector   vector.Vector
	Model    string
	TextHash string
}

// PaperText builds the text a paper is embedded from: the title, followed by
// the first MaxAbstractRunes runes of the abstract when one exists. A paper
// without an abstract is embedded from its title alone.
func PaperText(p *paper.Paper) string {
	if p.Abstract == "" {
		return p.Title
	}

	abstract := p.Abstract
	if runes := []rune(abstract); len(runes) > MaxAbstractRunes {
		abstract = string(runes[:MaxAbstractRunes])
	}
	return p.Title + " " + abstract
}

// TextHash computes the sha256 of embedded text. Stored alongside the
// vector so stale embeddings are detectable after a paper is edited.
func TextHash(text string) string {
	h := sha256.New()
	io.WriteString(h, text)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// EmbedPaper embeds a paper's text and returns the full record to store.
func EmbedPaper(ctx context.Context, provider Provider, p *paper.Paper) (Record, error) {
	text := PaperText(p)
	v, err := provider.Embed(ctx, text)
	if err != nil {
		return Record{}, err
	}
	return Record{Vector: v, Model: provider.ModelName(), TextHash: TextHash(text)}, nil
}
