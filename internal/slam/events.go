package slam

// Event is a single time-ordered input to the filter: either a Motion
// (odometry) sample or a Measurement (range-bearing) sample.
type Event interface {
	// Stamp returns the event time in seconds.
	Stamp() float64
}

// Motion is one odometry sample. The velocities are assumed constant
// since the previous processed event.
type Motion struct {
	Timestamp       float64 // seconds
	Velocity        float64 // forward velocity, m/s
	AngularVelocity float64 // rad/s
}

// Stamp implements Event.
func (m Motion) Stamp() float64 { return m.Timestamp }

// Measurement is one range-bearing observation of a barcoded subject.
// The subject may be another robot, in which case the filter ignores it.
type Measurement struct {
	Timestamp float64 // seconds
	Subject   int     // barcode number as read by the camera
	Range     float64 // meters
	Bearing   float64 // radians, relative to robot heading
}

// Stamp implements Event.
func (m Measurement) Stamp() float64 { return m.Timestamp }

// Point is a 2D position in the world frame.
type Point struct {
	X float64
	Y float64
}

// Pose is the robot's position and heading in the world frame.
type Pose struct {
	X     float64
	Y     float64
	Theta float64 // radians, always in (-pi, pi]
}
