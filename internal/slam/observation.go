package slam

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ExpectedObservation returns the range and bearing at which a landmark
// would be seen from the given pose.
func ExpectedObservation(p Pose, lm Point) (rng, bearing float64) {
	dx := lm.X - p.X
	dy := lm.Y - p.Y
	rng = math.Hypot(dx, dy)
	bearing = math.Atan2(dy, dx) - p.Theta
	return rng, bearing
}

// InverseObservation returns the landmark position implied by a fresh
// range-bearing measurement taken from the given pose. Used to initialise
// a landmark on first sight.
func InverseObservation(p Pose, rng, bearing float64) Point {
	return Point{
		X: p.X + rng*math.Cos(bearing+p.Theta),
		Y: p.Y + rng*math.Sin(bearing+p.Theta),
	}
}

// ObservationJacobian returns the 3x(3+2L) Jacobian H of the predicted
// (range, bearing, 0) measurement with respect to the joint state,
// evaluated at the given pose and landmark estimate. Only the pose columns
// and the two columns of the evaluated slot are nonzero.
//
// With dx = x_l - x, dy = y_l - y and q = dx^2 + dy^2:
//
//	range row:   [-dx/sqrt(q), -dy/sqrt(q),  0, ..., dx/sqrt(q), dy/sqrt(q), ...]
//	bearing row: [ dy/q,       -dx/q,       -1, ..., -dy/q,      dx/q,       ...]
//	third row:   all zero
func ObservationJacobian(p Pose, lm Point, slot, landmarks int) *mat.Dense {
	dx := lm.X - p.X
	dy := lm.Y - p.Y
	q := dx*dx + dy*dy
	sq := math.Sqrt(q)

	h := mat.NewDense(3, 3+2*landmarks, nil)

	h.Set(0, 0, -dx/sq)
	h.Set(0, 1, -dy/sq)
	h.Set(0, 3+2*slot, dx/sq)
	h.Set(0, 4+2*slot, dy/sq)

	h.Set(1, 0, dy/q)
	h.Set(1, 1, -dx/q)
	h.Set(1, 2, -1)
	h.Set(1, 3+2*slot, -dy/q)
	h.Set(1, 4+2*slot, dx/q)

	return h
}
