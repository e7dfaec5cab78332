package slam

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Phase identifies where the controller is inside one event.
type Phase string

const (
	PhaseAwaiting    Phase = "awaiting_event"
	PhasePredicting  Phase = "predicting"
	PhaseAssociating Phase = "associating"
	PhaseCorrecting  Phase = "correcting"
)

// StepResult reports what a single event did to the filter.
type StepResult struct {
	// Applied is false for skipped motion samples, foreign subjects and
	// dropped measurements: the state and covariance are unchanged.
	Applied bool

	// Matched is the landmark slot selected by data association, or -1
	// when the event was not an applied measurement.
	Matched int

	// Expected is the landmark position implied by the raw measurement;
	// Current is the matched slot's estimate at association time. Both
	// are meaningful only when Matched >= 0.
	Expected Point
	Current  Point
}

// Filter is the EKF-SLAM controller. It owns the state store and drives
// one event at a time through prediction or association plus correction.
// It is not safe for concurrent use; the update sequence is inherently
// ordered.
type Filter struct {
	cfg        Config
	store      *StateStore
	motion     *MotionModel
	associator *Associator
	lastStamp  float64
	phase      Phase
}

// New validates the configuration and builds a filter seeded with the
// initial pose. Configuration errors are fatal here, before any event.
func New(cfg Config) (*Filter, error) {
	if cfg.ProcessNoise == nil {
		cfg.ProcessNoise = DefaultProcessNoise()
	}
	if cfg.MeasurementNoise == nil {
		cfg.MeasurementNoise = DefaultMeasurementNoise()
	}
	if cfg.SkipThreshold == 0 {
		cfg.SkipThreshold = DefaultSkipThreshold
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter config: %w", err)
	}

	return &Filter{
		cfg:   cfg,
		store: NewStateStore(cfg.Landmarks, cfg.InitialPose, cfg.InitialStamp),
		motion: &MotionModel{
			R:             cfg.ProcessNoise,
			SkipThreshold: cfg.SkipThreshold,
		},
		associator: &Associator{
			Q:     cfg.MeasurementNoise,
			Slots: cfg.Slots,
		},
		lastStamp: cfg.InitialStamp,
		phase:     PhaseAwaiting,
	}, nil
}

// Store exposes the state store for reporting collaborators.
func (f *Filter) Store() *StateStore { return f.store }

// Phase returns the controller phase; PhaseAwaiting between events.
func (f *Filter) Phase() Phase { return f.phase }

// Step applies one event. Motion events run the prediction step;
// measurement events run association then correction. A measurement whose
// innovation covariance is degenerate is dropped with the state unchanged
// and ErrDegenerateCovariance returned; the filter remains usable.
func (f *Filter) Step(ev Event) (StepResult, error) {
	defer func() { f.phase = PhaseAwaiting }()

	switch e := ev.(type) {
	case Motion:
		f.phase = PhasePredicting
		applied := f.motion.Predict(f.store, e.Timestamp-f.lastStamp, e)
		if applied {
			f.lastStamp = e.Timestamp
		}
		return StepResult{Applied: applied, Matched: -1}, nil

	case Measurement:
		f.phase = PhaseAssociating
		assoc, err := f.associator.Associate(f.store, e)
		if err != nil {
			return StepResult{Matched: -1}, err
		}
		if assoc == nil {
			// Not a landmark subject; defined no-op.
			return StepResult{Matched: -1}, nil
		}
		f.phase = PhaseCorrecting
		f.correct(e, assoc)
		return StepResult{
			Applied:  true,
			Matched:  assoc.Slot,
			Expected: assoc.Expected,
			Current:  assoc.Current,
		}, nil

	default:
		return StepResult{Matched: -1}, fmt.Errorf("unknown event type %T", ev)
	}
}

// correct applies the Kalman measurement update for an association and
// commits the working state, including any first-sight initialisation.
func (f *Filter) correct(ev Measurement, assoc *Association) {
	cov := f.store.Covariance()

	// Kalman gain: K = Sigma * H' * Psi^-1.
	var sht, k mat.Dense
	sht.Mul(cov, assoc.H.T())
	k.Mul(&sht, assoc.psiInv)

	var kd mat.VecDense
	kd.MulVec(&k, assoc.Innovation)

	next := mat.VecDenseCopyOf(assoc.working)
	next.AddVec(next, &kd)
	next.SetVec(2, wrapAngle(next.AtVec(2)))

	// Sigma = (I - K*H) * Sigma, re-symmetrised against float drift.
	var kh mat.Dense
	kh.Mul(&k, assoc.H)
	ikh := identity(f.store.Dim())
	ikh.Sub(ikh, &kh)
	var nextCov mat.Dense
	nextCov.Mul(ikh, cov)
	symmetrize(&nextCov)

	_ = f.store.Append(ev.Timestamp, next)
	_ = f.store.SetCovariance(&nextCov)
	if assoc.initSlot >= 0 {
		f.store.MarkObserved(assoc.initSlot)
	}
	f.lastStamp = ev.Timestamp
}

// RunStats summarises one pass over an event stream.
type RunStats struct {
	Events        int
	Predictions   int
	Corrections   int
	SkippedMotion int
	Ignored       int // measurements of non-landmark subjects
	Dropped       int // measurements dropped for degenerate covariance
}

// Run applies a whole event stream in order. Degenerate measurements are
// counted and skipped; they never corrupt unrelated estimates or stop the
// run. Any other error aborts.
func (f *Filter) Run(events []Event) (RunStats, error) {
	var stats RunStats
	for _, ev := range events {
		stats.Events++
		res, err := f.Step(ev)
		switch {
		case errors.Is(err, ErrDegenerateCovariance):
			stats.Dropped++
			continue
		case err != nil:
			return stats, err
		}
		switch ev.(type) {
		case Motion:
			if res.Applied {
				stats.Predictions++
			} else {
				stats.SkippedMotion++
			}
		case Measurement:
			if res.Applied {
				stats.Corrections++
			} else {
				stats.Ignored++
			}
		}
	}
	return stats, nil
}
