package slam

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StateEntry is one row of the filter's append-only history: the full
// joint state vector as it stood after processing one event.
type StateEntry struct {
	Stamp float64
	State *mat.VecDense
}

// LandmarkEstimate pairs a landmark slot with its current position
// estimate. Only observed landmarks carry estimates.
type LandmarkEstimate struct {
	Slot     int
	Position Point
}

// StateStore holds the joint pose+landmark mean history, the current
// covariance matrix and the per-slot observed flags. The state vector has
// layout [x, y, theta, x_l0, y_l0, ..., x_l(L-1), y_l(L-1)]; the
// covariance is aligned index-for-index with it.
//
// History is append-only. Covariance is replaced wholesale on each update.
// Landmark slots hold placeholder values until their observed flag is set.
type StateStore struct {
	landmarks int
	dim       int
	history   []StateEntry
	cov       *mat.Dense
	observed  []bool
}

// NewStateStore creates a store for the given landmark count, seeded with
// the trusted initial pose. The covariance starts near zero everywhere
// except the landmark diagonals, which carry a very large variance.
func NewStateStore(landmarks int, initial Pose, stamp float64) *StateStore {
	dim := 3 + 2*landmarks

	state := mat.NewVecDense(dim, nil)
	state.SetVec(0, initial.X)
	state.SetVec(1, initial.Y)
	state.SetVec(2, wrapAngle(initial.Theta))

	cov := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			cov.Set(i, j, initialPoseVariance)
		}
	}
	for i := 3; i < dim; i++ {
		cov.Set(i, i, initialLandmarkVariance)
	}

	return &StateStore{
		landmarks: landmarks,
		dim:       dim,
		history:   []StateEntry{{Stamp: stamp, State: state}},
		cov:       cov,
		observed:  make([]bool, landmarks),
	}
}

// Dim returns the joint state dimension, 3 + 2L.
func (s *StateStore) Dim() int { return s.dim }

// Landmarks returns the configured landmark count L.
func (s *StateStore) Landmarks() int { return s.landmarks }

// Current returns the most recent state vector. The caller must not
// mutate it; updates go through Append.
func (s *StateStore) Current() *mat.VecDense {
	return s.history[len(s.history)-1].State
}

// Covariance returns the current covariance matrix. The caller must not
// mutate it; updates go through SetCovariance.
func (s *StateStore) Covariance() *mat.Dense { return s.cov }

// Append records a new current state. The previous entries are retained
// for reporting and never participate in later updates.
func (s *StateStore) Append(stamp float64, state *mat.VecDense) error {
	if state.Len() != s.dim {
		return fmt.Errorf("state length %d, want %d", state.Len(), s.dim)
	}
	s.history = append(s.history, StateEntry{Stamp: stamp, State: state})
	return nil
}

// SetCovariance replaces the current covariance matrix.
func (s *StateStore) SetCovariance(cov *mat.Dense) error {
	r, c := cov.Dims()
	if r != s.dim || c != s.dim {
		return fmt.Errorf("covariance %dx%d, want %dx%d", r, c, s.dim, s.dim)
	}
	s.cov = cov
	return nil
}

// MarkObserved sets the observed flag for a landmark slot. Flags are set
// exactly once and never cleared.
func (s *StateStore) MarkObserved(slot int) {
	s.observed[slot] = true
}

// Observed reports whether a landmark slot has been observed.
func (s *StateStore) Observed(slot int) bool {
	return s.observed[slot]
}

// History returns the full append-only state log, oldest first.
func (s *StateStore) History() []StateEntry { return s.history }

// Pose returns the robot pose block of the current state.
func (s *StateStore) Pose() Pose {
	cur := s.Current()
	return Pose{X: cur.AtVec(0), Y: cur.AtVec(1), Theta: cur.AtVec(2)}
}

// Landmark returns a slot's current position estimate. The second return
// is false for slots that have never been observed, whose stored values
// are placeholders.
func (s *StateStore) Landmark(slot int) (Point, bool) {
	if !s.observed[slot] {
		return Point{}, false
	}
	cur := s.Current()
	return Point{X: cur.AtVec(3 + 2*slot), Y: cur.AtVec(4 + 2*slot)}, true
}

// LandmarkEstimates returns the current estimates of all observed
// landmarks, in slot order.
func (s *StateStore) LandmarkEstimates() []LandmarkEstimate {
	var out []LandmarkEstimate
	for slot := 0; slot < s.landmarks; slot++ {
		if p, ok := s.Landmark(slot); ok {
			out = append(out, LandmarkEstimate{Slot: slot, Position: p})
		}
	}
	return out
}
