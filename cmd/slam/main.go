// Command slam runs EKF-SLAM with unknown correspondences over one robot
// of a UTIAS MRCLAM dataset, optionally persisting the run to SQLite and
// rendering trajectory reports.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/slam.report/internal/config"
	"github.com/banshee-data/slam.report/internal/mrclam"
	"github.com/banshee-data/slam.report/internal/report"
	"github.com/banshee-data/slam.report/internal/slam"
	"github.com/banshee-data/slam.report/internal/slamdb"
)

func main() {
	datasetDir := flag.String("dataset", "data/MRCLAM_Dataset1", "path to MRCLAM dataset directory")
	robot := flag.String("robot", "Robot1", "robot whose odometry and measurements to filter")
	startFrame := flag.Int("start", 800, "first frame of the event window")
	endFrame := flag.Int("end", 3200, "frame one past the end of the event window (0 = all)")
	tuningPath := flag.String("tuning", "", "optional JSON tuning file")
	dbPath := flag.String("db", "", "optional sqlite file to persist the run")
	migrationsDir := flag.String("migrations", "migrations", "path to schema migrations")
	plotPath := flag.String("plot", "", "optional output PNG of trajectory and landmarks")
	reportPath := flag.String("report", "", "optional output HTML report")
	flag.Parse()

	tuning := config.DefaultTuning()
	if *tuningPath != "" {
		var err error
		tuning, err = config.LoadTuning(*tuningPath)
		if err != nil {
			log.Fatalf("load tuning: %v", err)
		}
	}

	ds, err := mrclam.Load(*datasetDir, mrclam.Options{
		Robot:      *robot,
		StartFrame: *startFrame,
		EndFrame:   *endFrame,
	})
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}
	log.Printf("loaded %s %s: %d events, %d landmarks", *datasetDir, *robot, len(ds.Events), ds.Landmarks)

	filter, err := slam.New(slam.Config{
		Landmarks:        ds.Landmarks,
		Slots:            ds.Slots,
		InitialPose:      ds.InitialPose,
		InitialStamp:     ds.InitialStamp,
		ProcessNoise:     tuning.ProcessNoise(),
		MeasurementNoise: tuning.MeasurementNoise(),
		SkipThreshold:    tuning.GetMotionSkipSeconds(),
	})
	if err != nil {
		log.Fatalf("create filter: %v", err)
	}

	stats := runFilter(filter, ds.Events)
	log.Printf("run complete: %d events, %d predictions, %d corrections, %d skipped, %d ignored, %d dropped",
		stats.Events, stats.Predictions, stats.Corrections, stats.SkippedMotion, stats.Ignored, stats.Dropped)

	if *dbPath != "" {
		if err := persistRun(*dbPath, *migrationsDir, *datasetDir, *robot, *startFrame, *endFrame, tuning, filter); err != nil {
			log.Fatalf("persist run: %v", err)
		}
	}

	data := report.RunData{
		Title:         fmt.Sprintf("%s %s", *datasetDir, *robot),
		GroundTruth:   ds.GroundTruth,
		LandmarkTruth: ds.LandmarkTruth,
		History:       filter.Store().History(),
		Landmarks:     filter.Store().LandmarkEstimates(),
	}
	if *plotPath != "" {
		if err := report.WriteTrajectoryPNG(*plotPath, data); err != nil {
			log.Fatalf("write plot: %v", err)
		}
		log.Printf("wrote %s", *plotPath)
	}
	if *reportPath != "" {
		if err := report.WriteHTML(*reportPath, data); err != nil {
			log.Fatalf("write report: %v", err)
		}
		log.Printf("wrote %s", *reportPath)
	}
}

// runFilter applies the event stream one event at a time so degenerate
// measurements can be logged and skipped without stopping the run.
func runFilter(filter *slam.Filter, events []slam.Event) slam.RunStats {
	var stats slam.RunStats
	for _, ev := range events {
		stats.Events++
		res, err := filter.Step(ev)
		if err != nil {
			if errors.Is(err, slam.ErrDegenerateCovariance) {
				stats.Dropped++
				log.Printf("dropped measurement at t=%.3f: %v", ev.Stamp(), err)
				continue
			}
			log.Fatalf("filter step at t=%.3f: %v", ev.Stamp(), err)
		}
		switch ev.(type) {
		case slam.Motion:
			if res.Applied {
				stats.Predictions++
			} else {
				stats.SkippedMotion++
			}
		case slam.Measurement:
			if res.Applied {
				stats.Corrections++
			} else {
				stats.Ignored++
			}
		}
	}
	return stats
}

func persistRun(dbPath, migrationsDir, dataset, robot string, startFrame, endFrame int, tuning *config.Tuning, filter *slam.Filter) error {
	db, err := slamdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.MigrateUp(migrationsDir); err != nil {
		return err
	}

	params, err := json.Marshal(tuning)
	if err != nil {
		return fmt.Errorf("marshal tuning: %w", err)
	}

	store := slamdb.NewRunStore(db)
	run := &slamdb.Run{
		Dataset:    dataset,
		Robot:      robot,
		StartFrame: startFrame,
		EndFrame:   endFrame,
		Landmarks:  filter.Store().Landmarks(),
		ParamsJSON: params,
	}
	if err := store.InsertRun(run); err != nil {
		return err
	}
	if err := store.InsertStates(run.RunID, filter.Store().History()); err != nil {
		return err
	}
	if err := store.InsertLandmarks(run.RunID, filter.Store().LandmarkEstimates()); err != nil {
		return err
	}
	log.Printf("persisted run %s (%d states, %d landmarks)",
		run.RunID, len(filter.Store().History()), len(filter.Store().LandmarkEstimates()))
	return nil
}
