package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/paperhub/paperhub/internal/vector"
)

// Lazy defers a provider's readiness check to the first Embed call and runs
// it exactly once, even under concurrent first calls. A failed load is
// cached and returned to every later call wrapped in ErrBackendUnavailable;
// a backend that was down at first use stays down for the process lifetime.
type Lazy struct {
	provider Loader
	once     sync.Once
	loadErr  error
}

// NewLazy wraps a loader with load-once semantics.
func NewLazy(provider Loader) *Lazy {
	return &Lazy{provider: provider}
}

// Embed loads the backend on first call, then delegates to the provider.
func (l *Lazy) Embed(ctx context.Context, text string) (vector.Vector, error) {
	l.once.Do(func() {
		if err := l.provider.Load(ctx); err != nil {
			l.loadErr = fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
	})
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	return l.provider.Embed(ctx, text)
}

// ModelName returns the underlying provider's model name.
func (l *Lazy) ModelName() string {
	return l.provider.ModelName()
}

// Dimensions returns the underlying provider's dimensions.
func (l *Lazy) Dimensions() int {
	return l.provider.Dimensions()
}
