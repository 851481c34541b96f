package domain

import (
	"math"
	"testing"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float32{0.5, 0.25, 0.75}

	got := CosineSimilarity(v, v)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected similarity 1.0, got %f", got)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	if got := CosineSimilarity(a, b); got != 0 {
		t.Errorf("expected 0 for orthogonal vectors, got %f", got)
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.1, 0.9, 0.3}
	b := []float32{0.7, 0.2, 0.5}

	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Error("expected symmetric similarity")
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}

	if got := CosineSimilarity(a, b); got != 0 {
		t.Errorf("expected 0 for zero-norm vector, got %f", got)
	}
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{1, 2, 3}

	if got := CosineSimilarity(a, b); got != 0 {
		t.Errorf("expected 0 for mismatched lengths, got %f", got)
	}
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	a := []float32{1, 1}
	b := []float32{-1, -1}

	got := CosineSimilarity(a, b)
	if math.Abs(got-(-1.0)) > 1e-9 {
		t.Errorf("expected -1.0 for opposite vectors, got %f", got)
	}
}
