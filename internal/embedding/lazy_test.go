package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeLoader counts Load calls and can be told to fail them.
type fakeLoader struct {
	fakeProvider
	loads   atomic.Int32
	loadErr error
}

func (f *fakeLoader) Load(ctx context.Context) error {
	f.loads.Add(1)
	return f.loadErr
}

func TestLazy_LoadsOnce(t *testing.T) {
	loader := &fakeLoader{fakeProvider: fakeProvider{model: "m", dims: 4}}
	lazy := NewLazy(loader)

	for i := 0; i < 3; i++ {
		if _, err := lazy.Embed(context.Background(), "text"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
	}

	if got := loader.loads.Load(); got != 1 {
		t.Errorf("Load called %d times, want 1", got)
	}
	if got := loader.embeds.Load(); got != 3 {
		t.Errorf("Embed delegated %d times, want 3", got)
	}
}

func TestLazy_LoadsOnceUnderConcurrency(t *testing.T) {
	loader := &fakeLoader{fakeProvider: fakeProvider{model: "m", dims: 4}}
	lazy := NewLazy(loader)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lazy.Embed(context.Background(), "text")
		}()
	}
	wg.Wait()

	if got := loader.loads.Load(); got != 1 {
		t.Errorf("Load called %d times under concurrency, want 1", got)
	}
}

func TestLazy_CachesLoadFailure(t *testing.T) {
	loader := &fakeLoader{
		fakeProvider: fakeProvider{model: "m", dims: 4},
		loadErr:      errors.New("ollama is not running"),
	}
	lazy := NewLazy(loader)

	_, err := lazy.Embed(context.Background(), "text")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}

	// Even if the backend comes back, the cached failure stands; there is
	// no retry inside the embedder.
	loader.loadErr = nil
	_, err = lazy.Embed(context.Background(), "text")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("expected cached ErrBackendUnavailable, got %v", err)
	}

	if got := loader.embeds.Load(); got != 0 {
		t.Errorf("Embed reached the provider %d times after failed load", got)
	}
	if got := loader.loads.Load(); got != 1 {
		t.Errorf("Load called %d times, want 1", got)
	}
}

func TestLazy_ExposesProviderMetadata(t *testing.T) {
	loader := &fakeLoader{fakeProvider: fakeProvider{model: "all-minilm:l6-v2", dims: 384}}
	lazy := NewLazy(loader)

	if lazy.ModelName() != "all-minilm:l6-v2" {
		t.Errorf("ModelName() = %q", lazy.ModelName())
	}
	if lazy.Dimensions() != 384 {
		t.Errorf("Dimensions() = %d", lazy.Dimensions())
	}
}
