// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// AssertSymmetric checks that a matrix equals its transpose within tol.
func AssertSymmetric(t *testing.T, m mat.Matrix, tol float64) {
	t.Helper()
	r, c := m.Dims()
	if r != c {
		t.Fatalf("matrix %dx%d is not square", r, c)
	}
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if d := math.Abs(m.At(i, j) - m.At(j, i)); d > tol {
				t.Errorf("asymmetry at (%d,%d): |%g - %g| = %g > %g",
					i, j, m.At(i, j), m.At(j, i), d, tol)
			}
		}
	}
}

// AssertMatEqual checks that two matrices agree element-wise within tol.
func AssertMatEqual(t *testing.T, want, got mat.Matrix, tol float64) {
	t.Helper()
	wr, wc := want.Dims()
	gr, gc := got.Dims()
	if wr != gr || wc != gc {
		t.Fatalf("dims = %dx%d, want %dx%d", gr, gc, wr, wc)
	}
	for i := 0; i < wr; i++ {
		for j := 0; j < wc; j++ {
			if d := math.Abs(want.At(i, j) - got.At(i, j)); d > tol {
				t.Errorf("element (%d,%d) = %g, want %g", i, j, got.At(i, j), want.At(i, j))
			}
		}
	}
}

// AssertVecEqual checks that two vectors agree element-wise within tol.
func AssertVecEqual(t *testing.T, want, got mat.Vector, tol float64) {
	t.Helper()
	if want.Len() != got.Len() {
		t.Fatalf("len = %d, want %d", got.Len(), want.Len())
	}
	for i := 0; i < want.Len(); i++ {
		if d := math.Abs(want.AtVec(i) - got.AtVec(i)); d > tol {
			t.Errorf("element %d = %g, want %g", i, got.AtVec(i), want.AtVec(i))
		}
	}
}
