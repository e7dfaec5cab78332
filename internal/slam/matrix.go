package slam

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// wrapAngle normalises an angle into (-pi, pi].
func wrapAngle(theta float64) float64 {
	for theta > math.Pi {
		theta -= 2 * math.Pi
	}
	for theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	return theta
}

// identity returns a fresh n x n identity matrix.
func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// symmetrize averages a matrix with its transpose in place. Covariance
// updates are symmetric analytically but drift under floating point.
func symmetrize(m *mat.Dense) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			v := (m.At(i, j) + m.At(j, i)) / 2
			m.Set(i, j, v)
			m.Set(j, i, v)
		}
	}
}

// invert computes the inverse of a square matrix. An ill-conditioned but
// solvable system is accepted: the measurement noise carries a structurally
// huge third diagonal term, so finite condition warnings are expected. A
// singular matrix is reported as degenerate.
func invert(dst *mat.Dense, src mat.Matrix) error {
	if err := dst.Inverse(src); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return ErrDegenerateCovariance
		}
	}
	return nil
}
