package embedding

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/paperhub/paperhub/internal/paper"
)

// DefaultEmbedRPS caps embedding backend requests per second during bulk
// runs so a large import does not monopolize a shared Ollama instance.
const DefaultEmbedRPS = 8

// ProgressReporter receives progress updates during bulk embedding.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// VectorSink stores generated vectors.
type VectorSink interface {
	SetPaperVector(ctx context.Context, paperID int64, rec Record) error
}

// BuildStats summarizes a bulk embedding run.
type BuildStats struct {
	Embedded int           `json:"embedded"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"-"`
}

// Generator embeds papers in bulk and writes the vectors through a sink,
// rate limiting backend calls.
type Generator struct {
	provider Provider
	sink     VectorSink
	limiter  *rate.Limiter
	progress ProgressReporter
}

// NewGenerator creates a generator writing vectors through sink.
func NewGenerator(provider Provider, sink VectorSink) *Generator {
	return &Generator{
		provider: provider,
		sink:     sink,
		limiter:  rate.NewLimiter(rate.Limit(DefaultEmbedRPS), 1),
	}
}

// SetRPS overrides the backend request rate. Zero or negative disables
// limiting entirely.
func (g *Generator) SetRPS(rps float64) {
	if rps <= 0 {
		g.limiter = nil
		return
	}
	g.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// SetProgressReporter sets the progress reporter for the run.
func (g *Generator) SetProgressReporter(reporter ProgressReporter) {
	g.progress = reporter
}

// Run embeds every given paper and stores the vectors. Papers with an empty
// title are counted as skipped; there is nothing to embed. The run stops at
// the first backend or storage error, returning the stats accumulated so
// far along with the error.
func (g *Generator) Run(ctx context.Context, papers []paper.Paper) (*BuildStats, error) {
	start := time.Now()
	stats := &BuildStats{}
	total := len(papers)

	for i := range papers {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		if g.progress != nil {
			g.progress.OnProgress(i+1, total)
		}

		p := &papers[i]
		if p.Title == "" {
			stats.Skipped++
			continue
		}

		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return stats, err
			}
		}

		rec, err := EmbedPaper(ctx, g.provider, p)
		if err != nil {
			return stats, fmt.Errorf("embedding paper %d: %w", p.ID, err)
		}

		if err := g.sink.SetPaperVector(ctx, p.ID, rec); err != nil {
			return stats, fmt.Errorf("storing vector for paper %d: %w", p.ID, err)
		}
		stats.Embedded++
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
