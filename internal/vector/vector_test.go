package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        Vector{1, 0, 0},
			b:        Vector{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        Vector{1, 0},
			b:        Vector{0, 1},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        Vector{1, 0},
			b:        Vector{-1, 0},
			expected: -1.0,
		},
		{
			name:     "similar vectors",
			a:        Vector{1, 1},
			b:        Vector{1, 0},
			expected: 0.70710678, // cos(45 degrees)
		},
		{
			name:     "empty vectors",
			a:        Vector{},
			b:        Vector{},
			expected: 0.0,
		},
		{
			name:     "different lengths",
			a:        Vector{1, 0},
			b:        Vector{1, 0, 0},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        Vector{0, 0, 0},
			b:        Vector{1, 0, 0},
			expected: 0.0,
		},
		{
			name:     "scaled vectors keep direction",
			a:        Vector{0.3, 0.4},
			b:        Vector{3, 4},
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-7 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestCosine_Commutative(t *testing.T) {
	a := Vector{0.2, -0.5, 0.8, 0.1}
	b := Vector{-0.3, 0.9, 0.4, -0.7}

	if got, want := Cosine(a, b), Cosine(b, a); got != want {
		t.Errorf("Cosine not commutative: %v vs %v", got, want)
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		vs       []Vector
		expected Vector
		wantErr  bool
	}{
		{
			name:     "single vector is its own centroid",
			vs:       []Vector{{1, 2, 3}},
			expected: Vector{1, 2, 3},
		},
		{
			name:     "two vectors",
			vs:       []Vector{{1, 0, 1}, {3, 2, 0}},
			expected: Vector{2, 1, 0.5},
		},
		{
			name:     "three vectors",
			vs:       []Vector{{1, 1}, {2, 2}, {3, 3}},
			expected: Vector{2, 2},
		},
		{
			name:    "no vectors",
			vs:      nil,
			wantErr: true,
		},
		{
			name:    "ragged lengths",
			vs:      []Vector{{1, 2}, {1, 2, 3}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mean(tt.vs)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Mean: %v", err)
			}
			assertVectorsClose(t, got, tt.expected)
		})
	}
}

func TestMean_RaggedReportsDimensionMismatch(t *testing.T) {
	_, err := Mean([]Vector{{1, 2}, {1, 2, 3}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBlend(t *testing.T) {
	a := Vector{1, 0, 2}
	b := Vector{0, 1, 2}

	got, err := Blend(a, 0.7, b, 0.3)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	assertVectorsClose(t, got, Vector{0.7, 0.3, 2})
}

func TestBlend_LengthMismatch(t *testing.T) {
	_, err := Blend(Vector{1, 2}, 0.7, Vector{1, 2, 3}, 0.3)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCheckDims(t *testing.T) {
	if err := CheckDims(Vector{1, 2, 3}, 3); err != nil {
		t.Errorf("CheckDims on matching length: %v", err)
	}

	err := CheckDims(Vector{1, 2, 3}, 4)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func assertVectorsClose(t *testing.T, got, want Vector) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("component %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
