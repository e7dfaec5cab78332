package slam

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Association is the ephemeral result of matching one measurement against
// the observed landmarks. It is produced by Associator.Associate, consumed
// immediately by the correction step, and never persisted.
type Association struct {
	// Slot is the matched landmark slot.
	Slot int

	// Distance is the matched slot's Mahalanobis distance.
	Distance float64

	// H is the matched slot's 3x(3+2L) observation Jacobian.
	H *mat.Dense

	// Psi is the matched slot's innovation covariance H*Sigma*H' + Q.
	Psi *mat.Dense

	// Innovation is the residual (range - expected, bearing - expected, 0).
	Innovation *mat.VecDense

	// Expected is the landmark position implied by the raw measurement
	// (the inverse observation). Consumed by reporting.
	Expected Point

	// Current is the matched slot's position estimate at association
	// time. Consumed by reporting.
	Current Point

	// psiInv is the precomputed inverse of Psi, reused by the correction.
	psiInv *mat.Dense

	// working is the current state with any first-sight initialisation
	// applied. The correction commits it; a dropped measurement discards
	// it, leaving the store untouched.
	working *mat.VecDense

	// initSlot is the slot initialised by this measurement, or -1.
	initSlot int
}

// Associator scores a measurement against every observed landmark and
// selects the minimum Mahalanobis distance. There is no gating threshold:
// the nearest slot always wins, with ties broken by the lowest slot index.
type Associator struct {
	// Q is the 3x3 measurement noise.
	Q *mat.Dense

	// Slots maps measurement subjects to landmark slots. Subjects absent
	// from the map are not landmarks and their measurements are no-ops.
	Slots map[int]int
}

// Associate evaluates one measurement. It returns (nil, nil) when the
// subject is not a tracked landmark. A landmark seen for the first time is
// initialised from the inverse observation on a working copy of the state
// and joins the candidate set for this same measurement; the copy is only
// committed by the correction step.
func (a *Associator) Associate(store *StateStore, ev Measurement) (*Association, error) {
	slot, ok := a.Slots[ev.Subject]
	if !ok {
		return nil, nil
	}

	pose := store.Pose()
	expected := InverseObservation(pose, ev.Range, ev.Bearing)

	working := mat.VecDenseCopyOf(store.Current())
	initSlot := -1
	if !store.Observed(slot) {
		working.SetVec(3+2*slot, expected.X)
		working.SetVec(4+2*slot, expected.Y)
		initSlot = slot
	}

	var best *Association
	for s := 0; s < store.Landmarks(); s++ {
		if !store.Observed(s) && s != initSlot {
			continue
		}
		lm := Point{X: working.AtVec(3 + 2*s), Y: working.AtVec(4 + 2*s)}
		cand, err := scoreCandidate(pose, lm, s, store.Landmarks(), store.Covariance(), a.Q, ev)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", s, err)
		}
		if best == nil || cand.Distance < best.Distance {
			best = cand
			best.Current = lm
		}
	}
	if best == nil {
		// Unreachable: the subject's own slot is always a candidate.
		return nil, fmt.Errorf("subject %d: no observed landmark to score", ev.Subject)
	}

	best.Expected = expected
	best.working = working
	best.initSlot = initSlot
	return best, nil
}

// scoreCandidate computes one slot's Jacobian, innovation covariance and
// Mahalanobis distance. It is a pure function over an immutable snapshot
// of the state and covariance.
func scoreCandidate(pose Pose, lm Point, slot, landmarks int, cov, q *mat.Dense, ev Measurement) (*Association, error) {
	rng, bearing := ExpectedObservation(pose, lm)
	h := ObservationJacobian(pose, lm, slot, landmarks)

	var hp, psi mat.Dense
	hp.Mul(h, cov)
	psi.Mul(&hp, h.T())
	psi.Add(&psi, q)

	var psiInv mat.Dense
	if err := invert(&psiInv, &psi); err != nil {
		return nil, err
	}

	d := mat.NewVecDense(3, []float64{ev.Range - rng, ev.Bearing - bearing, 0})
	var weighted mat.VecDense
	weighted.MulVec(&psiInv, d)

	return &Association{
		Slot:       slot,
		Distance:   mat.Dot(d, &weighted),
		H:          h,
		Psi:        &psi,
		Innovation: d,
		psiInv:     &psiInv,
	}, nil
}
