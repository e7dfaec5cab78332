package slam

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/slam.report/internal/testutil"
)

func newTestFilter(t *testing.T, landmarks int, slots map[int]int) *Filter {
	t.Helper()
	f, err := New(Config{
		Landmarks: landmarks,
		Slots:     slots,
	})
	require.NoError(t, err)
	return f
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	t.Run("rejects zero landmarks", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("rejects out of range slot", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Landmarks: 2, Slots: map[int]int{9: 5}})
		require.Error(t, err)
	})

	t.Run("rejects negative slot", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Landmarks: 2, Slots: map[int]int{9: -1}})
		require.Error(t, err)
	})

	t.Run("rejects wrong noise shape", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Landmarks: 1, ProcessNoise: mat.NewDense(2, 2, nil)})
		require.Error(t, err)
	})

	t.Run("defaults are filled in", func(t *testing.T) {
		t.Parallel()
		f := newTestFilter(t, 1, nil)
		assert.Equal(t, DefaultSkipThreshold, f.cfg.SkipThreshold)
		assert.NotNil(t, f.cfg.ProcessNoise)
		assert.NotNil(t, f.cfg.MeasurementNoise)
	})
}

func TestStepMotion(t *testing.T) {
	t.Parallel()

	f := newTestFilter(t, 1, nil)

	res, err := f.Step(Motion{Timestamp: 1, Velocity: 1})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, -1, res.Matched)
	assert.InDelta(t, 1.0, f.Store().Pose().X, 1e-12)

	// Duplicate timestamp falls under the skip threshold.
	res, err = f.Step(Motion{Timestamp: 1, Velocity: 9})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Len(t, f.Store().History(), 2)
}

func TestStepMeasurementFirstSight(t *testing.T) {
	t.Parallel()

	f := newTestFilter(t, 1, map[int]int{7: 0})

	res, err := f.Step(Measurement{Timestamp: 1, Subject: 7, Range: 2, Bearing: 0})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 0, res.Matched)
	assert.Equal(t, Point{X: 2, Y: 0}, res.Expected)

	// First sight sets the estimate to exactly the inverse observation.
	p, ok := f.Store().Landmark(0)
	require.True(t, ok)
	assert.Equal(t, Point{X: 2, Y: 0}, p)
}

func TestStepMeasurementFixedPoint(t *testing.T) {
	t.Parallel()

	// A repeat of the same noise-free measurement with no robot motion
	// must leave the whole state numerically unchanged.
	f := newTestFilter(t, 1, map[int]int{7: 0})

	_, err := f.Step(Measurement{Timestamp: 1, Subject: 7, Range: 2, Bearing: 0})
	require.NoError(t, err)
	before := mat.VecDenseCopyOf(f.Store().Current())

	res, err := f.Step(Measurement{Timestamp: 2, Subject: 7, Range: 2, Bearing: 0})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	testutil.AssertVecEqual(t, before, f.Store().Current(), 0)
}

func TestStepMeasurementForeignSubject(t *testing.T) {
	t.Parallel()

	f := newTestFilter(t, 1, map[int]int{7: 0})
	before := mat.VecDenseCopyOf(f.Store().Current())

	res, err := f.Step(Measurement{Timestamp: 1, Subject: 2, Range: 5, Bearing: 1})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, -1, res.Matched)
	testutil.AssertVecEqual(t, before, f.Store().Current(), 0)
	assert.Len(t, f.Store().History(), 1)
}

type bogusEvent struct{}

func (bogusEvent) Stamp() float64 { return 0 }

func TestStepUnknownEventType(t *testing.T) {
	t.Parallel()

	f := newTestFilter(t, 1, nil)
	_, err := f.Step(bogusEvent{})
	require.Error(t, err)
}

func TestPhaseReturnsToAwaiting(t *testing.T) {
	t.Parallel()

	f := newTestFilter(t, 1, map[int]int{7: 0})
	assert.Equal(t, PhaseAwaiting, f.Phase())

	_, err := f.Step(Motion{Timestamp: 1, Velocity: 1})
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaiting, f.Phase())

	_, err = f.Step(Measurement{Timestamp: 2, Subject: 7, Range: 2})
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaiting, f.Phase())
}

func TestCovarianceStaysSymmetric(t *testing.T) {
	t.Parallel()

	f := newTestFilter(t, 3, map[int]int{6: 0, 7: 1, 8: 2})

	events := []Event{
		Motion{Timestamp: 0.5, Velocity: 0.4, AngularVelocity: 0.1},
		Measurement{Timestamp: 0.9, Subject: 6, Range: 2.0, Bearing: 0.2},
		Motion{Timestamp: 1.4, Velocity: 0.3, AngularVelocity: -0.2},
		Measurement{Timestamp: 1.8, Subject: 7, Range: 3.1, Bearing: -0.4},
		Measurement{Timestamp: 2.1, Subject: 6, Range: 1.9, Bearing: 0.25},
		Motion{Timestamp: 2.6, Velocity: 0.5, AngularVelocity: 0.3},
		Measurement{Timestamp: 3.0, Subject: 8, Range: 4.2, Bearing: 1.1},
		Measurement{Timestamp: 3.2, Subject: 7, Range: 3.0, Bearing: -0.35},
		Motion{Timestamp: 3.7, Velocity: 0.2, AngularVelocity: -0.1},
	}

	for _, ev := range events {
		_, err := f.Step(ev)
		require.NoError(t, err)
		testutil.AssertSymmetric(t, f.Store().Covariance(), 1e-9)
		theta := f.Store().Pose().Theta
		assert.True(t, theta > -math.Pi && theta <= math.Pi, "theta %g out of range", theta)
	}
}

func TestStepDropsDegenerateMeasurement(t *testing.T) {
	t.Parallel()

	// A zero measurement noise leaves the innovation covariance's third
	// row and column all zero, so Psi is exactly singular. The event must
	// be dropped with the state untouched and the filter still usable.
	f, err := New(Config{
		Landmarks:        1,
		Slots:            map[int]int{7: 0},
		MeasurementNoise: mat.NewDense(3, 3, nil),
	})
	require.NoError(t, err)
	before := mat.VecDenseCopyOf(f.Store().Current())

	_, err = f.Step(Measurement{Timestamp: 1, Subject: 7, Range: 2, Bearing: 0})
	require.ErrorIs(t, err, ErrDegenerateCovariance)

	testutil.AssertVecEqual(t, before, f.Store().Current(), 0)
	assert.Len(t, f.Store().History(), 1)
	assert.False(t, f.Store().Observed(0), "dropped first sight must not mark the slot observed")

	// The filter keeps working on later events.
	res, err := f.Step(Motion{Timestamp: 2, Velocity: 1})
	require.NoError(t, err)
	assert.True(t, res.Applied)
}

func TestRunCountsDroppedMeasurements(t *testing.T) {
	t.Parallel()

	f, err := New(Config{
		Landmarks:        1,
		Slots:            map[int]int{7: 0},
		MeasurementNoise: mat.NewDense(3, 3, nil),
	})
	require.NoError(t, err)

	stats, err := f.Run([]Event{
		Motion{Timestamp: 1, Velocity: 0.5},
		Measurement{Timestamp: 2, Subject: 7, Range: 2, Bearing: 0},
		Motion{Timestamp: 3, Velocity: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 2, stats.Predictions)
}

func TestRunStats(t *testing.T) {
	t.Parallel()

	f := newTestFilter(t, 2, map[int]int{6: 0, 7: 1})

	events := []Event{
		Motion{Timestamp: 1, Velocity: 0.5},
		Motion{Timestamp: 1, Velocity: 0.5},                        // duplicate stamp: skipped
		Measurement{Timestamp: 1.5, Subject: 3, Range: 2},          // another robot: ignored
		Measurement{Timestamp: 2, Subject: 6, Range: 2, Bearing: 0},
		Measurement{Timestamp: 2.5, Subject: 7, Range: 3, Bearing: 1},
		Motion{Timestamp: 3, Velocity: 0.1, AngularVelocity: 0.2},
	}

	stats, err := f.Run(events)
	require.NoError(t, err)
	assert.Equal(t, RunStats{
		Events:        6,
		Predictions:   2,
		Corrections:   2,
		SkippedMotion: 1,
		Ignored:       1,
	}, stats)

	// One history entry per applied event plus the seed.
	assert.Len(t, f.Store().History(), 5)
}
