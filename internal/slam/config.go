package slam

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Constants for filter configuration.
const (
	// DefaultSkipThreshold is the minimum time delta between two motion
	// events; closer samples are discarded as redundant.
	DefaultSkipThreshold = 0.001 // seconds

	// initialPoseVariance seeds the whole covariance matrix: the initial
	// pose is trusted, and landmark cross-covariances start near zero.
	initialPoseVariance = 1e-6

	// initialLandmarkVariance seeds the diagonal of every landmark block:
	// nothing is known about a landmark before its first observation.
	initialLandmarkVariance = 1e6

	// bearingResidualFloor is the third diagonal term of the measurement
	// noise. The innovation's third component is structurally zero, so the
	// term only has to be large enough not to disturb residual ordering.
	bearingResidualFloor = 1e32
)

// Config holds the fixed parameters of a Filter. Landmark count and the
// subject-to-slot mapping never change after construction.
type Config struct {
	// Landmarks is the number of landmark slots (L) in the joint state.
	Landmarks int

	// Slots maps a measurement subject (barcode number) to a landmark
	// slot in [0, Landmarks). Subjects absent from the map are ignored
	// by the filter.
	Slots map[int]int

	// InitialPose is the trusted starting pose.
	InitialPose Pose

	// InitialStamp is the timestamp of the initial pose, used as the
	// reference for the first motion delta.
	InitialStamp float64

	// ProcessNoise is the 3x3 pose process noise R added during each
	// prediction. Nil selects DefaultProcessNoise.
	ProcessNoise *mat.Dense

	// MeasurementNoise is the 3x3 measurement noise Q added to every
	// innovation covariance. Nil selects DefaultMeasurementNoise.
	MeasurementNoise *mat.Dense

	// SkipThreshold is the minimum motion time delta in seconds; zero
	// selects DefaultSkipThreshold.
	SkipThreshold float64
}

// DefaultProcessNoise returns the pose process noise used for the UTIAS
// MRCLAM datasets: diag(120, 120, 100) squared.
func DefaultProcessNoise() *mat.Dense {
	return diag3(120*120, 120*120, 100*100)
}

// DefaultMeasurementNoise returns the range-bearing measurement noise used
// for the UTIAS MRCLAM datasets: diag(1000, 1000) squared, with the
// structural floor on the unused third component.
func DefaultMeasurementNoise() *mat.Dense {
	return diag3(1000*1000, 1000*1000, bearingResidualFloor)
}

// Validate checks the configuration before any event is processed.
// Slot mapping errors are fatal here rather than per-event.
func (c *Config) Validate() error {
	if c.Landmarks <= 0 {
		return fmt.Errorf("landmark count must be positive, got %d", c.Landmarks)
	}
	for subject, slot := range c.Slots {
		if slot < 0 || slot >= c.Landmarks {
			return fmt.Errorf("subject %d maps to slot %d, outside [0, %d)", subject, slot, c.Landmarks)
		}
	}
	if c.SkipThreshold < 0 {
		return fmt.Errorf("skip threshold must not be negative, got %g", c.SkipThreshold)
	}
	if err := checkNoiseDims(c.ProcessNoise, "process"); err != nil {
		return err
	}
	return checkNoiseDims(c.MeasurementNoise, "measurement")
}

func checkNoiseDims(m *mat.Dense, name string) error {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return fmt.Errorf("%s noise must be 3x3, got %dx%d", name, r, c)
	}
	return nil
}

func diag3(a, b, c float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		a, 0, 0,
		0, b, 0,
		0, 0, c,
	})
}
