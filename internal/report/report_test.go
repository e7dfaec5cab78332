package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/slam.report/internal/mrclam"
	"github.com/banshee-data/slam.report/internal/slam"
)

func testRunData() RunData {
	return RunData{
		Title: "test run",
		GroundTruth: []mrclam.GroundTruth{
			{Stamp: 0, X: 0, Y: 0, Theta: 0},
			{Stamp: 1, X: 0.5, Y: 0.1, Theta: 0.1},
		},
		LandmarkTruth: []mrclam.Landmark{
			{Subject: 6, X: 2, Y: 0},
		},
		History: []slam.StateEntry{
			{Stamp: 0, State: mat.NewVecDense(5, []float64{0, 0, 0, 0, 0})},
			{Stamp: 1, State: mat.NewVecDense(5, []float64{0.6, 0.2, 0.1, 2, 0})},
		},
		Landmarks: []slam.LandmarkEstimate{
			{Slot: 0, Position: slam.Point{X: 2.05, Y: -0.02}},
		},
	}
}

func requireNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteTrajectoryPNG(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trajectory.png")
	require.NoError(t, WriteTrajectoryPNG(path, testRunData()))
	requireNonEmptyFile(t, path)
}

func TestWriteTrajectoryPNGEmptyData(t *testing.T) {
	t.Parallel()

	// An empty run still renders a valid, if blank, plot.
	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, WriteTrajectoryPNG(path, RunData{Title: "empty"}))
	requireNonEmptyFile(t, path)
}

func TestWriteHTML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, WriteHTML(path, testRunData()))
	requireNonEmptyFile(t, path)
}

func TestWriteHTMLBadPath(t *testing.T) {
	t.Parallel()

	err := WriteHTML(filepath.Join(t.TempDir(), "missing", "report.html"), testRunData())
	assert.Error(t, err)
}
