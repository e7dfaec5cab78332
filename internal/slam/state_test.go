package slam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/slam.report/internal/testutil"
)

func TestNewStateStore(t *testing.T) {
	t.Parallel()

	store := NewStateStore(2, Pose{X: 1.5, Y: -0.5, Theta: 0.25}, 10.0)

	assert.Equal(t, 7, store.Dim())
	assert.Equal(t, 2, store.Landmarks())

	cur := store.Current()
	assert.Equal(t, 1.5, cur.AtVec(0))
	assert.Equal(t, -0.5, cur.AtVec(1))
	assert.Equal(t, 0.25, cur.AtVec(2))

	cov := store.Covariance()
	// Trusted pose block, uninformative landmark diagonals.
	assert.Equal(t, initialPoseVariance, cov.At(0, 0))
	assert.Equal(t, initialPoseVariance, cov.At(3, 4))
	assert.Equal(t, initialLandmarkVariance, cov.At(3, 3))
	assert.Equal(t, initialLandmarkVariance, cov.At(6, 6))
	testutil.AssertSymmetric(t, cov, 0)

	require.Len(t, store.History(), 1)
	assert.Equal(t, 10.0, store.History()[0].Stamp)
}

func TestStateStoreAppend(t *testing.T) {
	t.Parallel()

	store := NewStateStore(1, Pose{}, 0)

	next := mat.NewVecDense(5, []float64{1, 2, 0.5, 0, 0})
	require.NoError(t, store.Append(1.0, next))
	assert.Len(t, store.History(), 2)
	assert.Equal(t, next, store.Current())

	// Wrong dimension is rejected, history untouched.
	bad := mat.NewVecDense(3, nil)
	require.Error(t, store.Append(2.0, bad))
	assert.Len(t, store.History(), 2)
}

func TestStateStoreSetCovariance(t *testing.T) {
	t.Parallel()

	store := NewStateStore(1, Pose{}, 0)
	require.Error(t, store.SetCovariance(mat.NewDense(3, 3, nil)))

	cov := mat.NewDense(5, 5, nil)
	require.NoError(t, store.SetCovariance(cov))
	assert.Equal(t, cov, store.Covariance())
}

func TestStateStoreObservedFlags(t *testing.T) {
	t.Parallel()

	store := NewStateStore(3, Pose{}, 0)
	for slot := 0; slot < 3; slot++ {
		assert.False(t, store.Observed(slot))
	}

	// Unobserved slots never expose their placeholder values.
	_, ok := store.Landmark(1)
	assert.False(t, ok)
	assert.Empty(t, store.LandmarkEstimates())

	next := mat.VecDenseCopyOf(store.Current())
	next.SetVec(5, 4.0)
	next.SetVec(6, -1.0)
	require.NoError(t, store.Append(1.0, next))
	store.MarkObserved(1)

	assert.True(t, store.Observed(1))
	p, ok := store.Landmark(1)
	require.True(t, ok)
	assert.Equal(t, Point{X: 4.0, Y: -1.0}, p)

	ests := store.LandmarkEstimates()
	require.Len(t, ests, 1)
	assert.Equal(t, 1, ests[0].Slot)
}

func TestStateStorePose(t *testing.T) {
	t.Parallel()

	store := NewStateStore(1, Pose{X: 2, Y: 3, Theta: -1}, 0)
	assert.Equal(t, Pose{X: 2, Y: 3, Theta: -1}, store.Pose())
}
