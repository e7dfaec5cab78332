// Package mrclam loads UTIAS Multi-Robot Cooperative Localization and
// Mapping (MRCLAM) datasets into a time-ordered event stream for the
// filter. One Load covers one robot's odometry and measurements plus the
// shared barcode and landmark catalogues.
package mrclam

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/slam.report/internal/slam"
)

// robotSubjects is the number of leading rows in Barcodes.dat that belong
// to robots rather than landmarks.
const robotSubjects = 5

// Landmark is one surveyed landmark from the dataset's ground truth.
type Landmark struct {
	Subject int
	X       float64
	Y       float64
	XStd    float64
	YStd    float64
}

// GroundTruth is one row of the robot's motion-capture ground truth.
type GroundTruth struct {
	Stamp float64
	X     float64
	Y     float64
	Theta float64
}

// Dataset is one robot's view of an MRCLAM dataset, windowed and merged
// into a single time-ordered event stream.
type Dataset struct {
	// Landmarks is the number of landmark slots (L).
	Landmarks int

	// Slots maps barcode numbers to landmark slots in [0, Landmarks).
	Slots map[int]int

	// LandmarkTruth holds the surveyed landmark positions, by slot.
	// Ground truth is never fed to the filter; it exists for reporting.
	LandmarkTruth []Landmark

	// GroundTruth is the robot pose ground truth trimmed to the event
	// window.
	GroundTruth []GroundTruth

	// Events is the merged odometry+measurement stream, ordered by
	// timestamp with ties in original stream order.
	Events []slam.Event

	// InitialPose and InitialStamp come from the first in-window ground
	// truth row and seed the filter.
	InitialPose  slam.Pose
	InitialStamp float64
}

// Options select the robot and the portion of the event stream to load.
type Options struct {
	// Robot is the dataset robot name, e.g. "Robot1".
	Robot string

	// StartFrame is the index of the first event. It is advanced to the
	// next motion event so the window always opens with a control input.
	StartFrame int

	// EndFrame is the index one past the last event; zero means the end
	// of the stream.
	EndFrame int
}

// Load reads an MRCLAM dataset directory for one robot.
func Load(dir string, opts Options) (*Dataset, error) {
	if opts.Robot == "" {
		return nil, fmt.Errorf("robot name is required")
	}

	barcodes, err := readTable(filepath.Join(dir, "Barcodes.dat"), 2)
	if err != nil {
		return nil, fmt.Errorf("read barcodes: %w", err)
	}
	if len(barcodes) <= robotSubjects {
		return nil, fmt.Errorf("barcode table has %d rows, want more than %d", len(barcodes), robotSubjects)
	}

	landmarkRows, err := readTable(filepath.Join(dir, "Landmark_Groundtruth.dat"), 5)
	if err != nil {
		return nil, fmt.Errorf("read landmark ground truth: %w", err)
	}

	truthRows, err := readTable(filepath.Join(dir, opts.Robot+"_Groundtruth.dat"), 4)
	if err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}

	odometryRows, err := readTable(filepath.Join(dir, opts.Robot+"_Odometry.dat"), 3)
	if err != nil {
		return nil, fmt.Errorf("read odometry: %w", err)
	}

	measurementRows, err := readTable(filepath.Join(dir, opts.Robot+"_Measurement.dat"), 4)
	if err != nil {
		return nil, fmt.Errorf("read measurements: %w", err)
	}

	ds := &Dataset{
		Landmarks: len(barcodes) - robotSubjects,
		Slots:     make(map[int]int, len(barcodes)-robotSubjects),
	}

	// Rows 0..4 are robots; landmark barcode rows align with the
	// landmark ground truth rows.
	for i := robotSubjects; i < len(barcodes); i++ {
		slot := i - robotSubjects
		ds.Slots[int(barcodes[i][1])] = slot
		if slot < len(landmarkRows) {
			row := landmarkRows[slot]
			ds.LandmarkTruth = append(ds.LandmarkTruth, Landmark{
				Subject: int(row[0]),
				X:       row[1],
				Y:       row[2],
				XStd:    row[3],
				YStd:    row[4],
			})
		}
	}
	if len(ds.LandmarkTruth) != ds.Landmarks {
		return nil, fmt.Errorf("landmark ground truth has %d rows, want %d", len(ds.LandmarkTruth), ds.Landmarks)
	}

	// Merge odometry and measurements into one stream, stable-sorted by
	// timestamp so simultaneous events keep their original order.
	events := make([]slam.Event, 0, len(odometryRows)+len(measurementRows))
	for _, row := range odometryRows {
		events = append(events, slam.Motion{Timestamp: row[0], Velocity: row[1], AngularVelocity: row[2]})
	}
	for _, row := range measurementRows {
		events = append(events, slam.Measurement{Timestamp: row[0], Subject: int(row[1]), Range: row[2], Bearing: row[3]})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Stamp() < events[j].Stamp()
	})

	events, err = window(events, opts.StartFrame, opts.EndFrame)
	if err != nil {
		return nil, err
	}
	ds.Events = events

	startStamp := events[0].Stamp()
	endStamp := events[len(events)-1].Stamp()
	for _, row := range truthRows {
		if row[0] < startStamp || row[0] >= endStamp {
			continue
		}
		ds.GroundTruth = append(ds.GroundTruth, GroundTruth{
			Stamp: row[0],
			X:     row[1],
			Y:     row[2],
			Theta: row[3],
		})
	}
	if len(ds.GroundTruth) == 0 {
		return nil, fmt.Errorf("no ground truth rows inside the event window [%g, %g)", startStamp, endStamp)
	}

	first := ds.GroundTruth[0]
	ds.InitialPose = slam.Pose{X: first.X, Y: first.Y, Theta: first.Theta}
	ds.InitialStamp = first.Stamp

	return ds, nil
}

// window slices the event stream to [start, end), advancing start to the
// first motion event so the filter always opens with a control input.
func window(events []slam.Event, start, end int) ([]slam.Event, error) {
	if start < 0 || start >= len(events) {
		return nil, fmt.Errorf("start frame %d outside stream of %d events", start, len(events))
	}
	for start < len(events) {
		if _, ok := events[start].(slam.Motion); ok {
			break
		}
		start++
	}
	if end <= 0 || end > len(events) {
		end = len(events)
	}
	if start >= end {
		return nil, fmt.Errorf("empty event window [%d, %d)", start, end)
	}
	return events[start:end], nil
}

// readTable parses a whitespace-delimited numeric .dat file, skipping
// comment and blank lines and requiring at least cols columns per row.
func readTable(path string, cols int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < cols {
			return nil, fmt.Errorf("%s:%d: %d columns, want at least %d", filepath.Base(path), lineNo, len(fields), cols)
		}
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: column %d: %w", filepath.Base(path), lineNo, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
