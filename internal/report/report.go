// Package report renders filter run output for inspection: a static PNG
// of the estimated trajectory against ground truth, and an interactive
// HTML chart. The filter core never imports this package.
package report

import (
	"github.com/banshee-data/slam.report/internal/mrclam"
	"github.com/banshee-data/slam.report/internal/slam"
)

// RunData bundles everything the renderers need from one filter run.
type RunData struct {
	// Title labels the plots, e.g. "MRCLAM_Dataset1 Robot1".
	Title string

	// GroundTruth is the motion-capture robot trajectory for the window.
	GroundTruth []mrclam.GroundTruth

	// LandmarkTruth holds the surveyed landmark positions.
	LandmarkTruth []mrclam.Landmark

	// History is the filter's full state log, oldest first.
	History []slam.StateEntry

	// Landmarks holds the final landmark estimates.
	Landmarks []slam.LandmarkEstimate
}
