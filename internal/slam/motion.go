package slam

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MotionModel applies odometry prediction to a state store. Process noise
// is added to the pose block only; landmark estimates are propagated
// unchanged.
type MotionModel struct {
	// R is the 3x3 pose process noise.
	R *mat.Dense

	// SkipThreshold is the minimum time delta in seconds; zero selects
	// DefaultSkipThreshold.
	SkipThreshold float64
}

// Predict applies one odometry sample to the store and reports whether it
// was applied. Samples closer than the skip threshold to the previous
// event are discarded with no state or covariance change; a zero or
// negative delta falls into the same skip path.
func (m *MotionModel) Predict(store *StateStore, dt float64, ev Motion) bool {
	eps := m.SkipThreshold
	if eps == 0 {
		eps = DefaultSkipThreshold
	}
	if dt < eps {
		return false
	}

	cur := store.Current()
	theta := cur.AtVec(2)

	next := mat.VecDenseCopyOf(cur)
	next.SetVec(0, cur.AtVec(0)+ev.Velocity*math.Cos(theta)*dt)
	next.SetVec(1, cur.AtVec(1)+ev.Velocity*math.Sin(theta)*dt)
	next.SetVec(2, wrapAngle(theta+ev.AngularVelocity*dt))

	// Linearised motion Jacobian: identity except for the pose rows'
	// sensitivity to heading.
	g := identity(store.Dim())
	g.Set(0, 2, -ev.Velocity*dt*math.Sin(theta))
	g.Set(1, 2, ev.Velocity*dt*math.Cos(theta))

	var gs, cov mat.Dense
	gs.Mul(g, store.Covariance())
	cov.Mul(&gs, g.T())
	cov.Set(0, 0, cov.At(0, 0)+m.R.At(0, 0))
	cov.Set(1, 1, cov.At(1, 1)+m.R.At(1, 1))
	cov.Set(2, 2, cov.At(2, 2)+m.R.At(2, 2))

	// Dimensions are preserved by construction.
	_ = store.Append(ev.Timestamp, next)
	_ = store.SetCovariance(&cov)
	return true
}
