package embedding

import (
	"context"

	"github.com/paperhub/paperhub/internal/vector"
)

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (vector.Vector, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}

// Loader is a Provider whose backend needs a one-time readiness check
// (reachability, model presence) before first use.
type Loader interface {
	Provider

	// Load verifies the backend is ready to embed.
	Load(ctx context.Context) error
}
