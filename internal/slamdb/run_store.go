package slamdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/slam.report/internal/slam"
)

// Run represents one complete filter pass over a dataset window.
type Run struct {
	RunID      string          `json:"run_id"`
	Dataset    string          `json:"dataset"`
	Robot      string          `json:"robot"`
	StartFrame int             `json:"start_frame"`
	EndFrame   int             `json:"end_frame"`
	Landmarks  int             `json:"landmarks"`
	ParamsJSON json.RawMessage `json:"params_json,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}

// StateRecord is one persisted row of the filter's state history. Only
// the pose block is stored per event; landmark estimates are persisted
// once per run from the final state.
type StateRecord struct {
	Seq   int     `json:"seq"`
	Stamp float64 `json:"stamp"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// LandmarkRecord is one persisted landmark estimate from the final state.
type LandmarkRecord struct {
	Slot int     `json:"slot"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// RunStore provides persistence for filter runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a RunStore backed by the given database.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db.DB}
}

// InsertRun persists a new run. If RunID is empty, a UUID is generated.
func (s *RunStore) InsertRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var paramsStr interface{}
	if len(run.ParamsJSON) > 0 {
		paramsStr = string(run.ParamsJSON)
	}

	_, err := s.db.Exec(`
		INSERT INTO slam_runs (
			run_id, dataset, robot, start_frame, end_frame, landmarks,
			params_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Dataset, run.Robot, run.StartFrame, run.EndFrame,
		run.Landmarks, paramsStr, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun returns a single run by ID.
func (s *RunStore) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, dataset, robot, start_frame, end_frame, landmarks,
		       params_json, created_at
		FROM slam_runs
		WHERE run_id = ?`, runID)

	var r Run
	var paramsStr sql.NullString
	err := row.Scan(&r.RunID, &r.Dataset, &r.Robot, &r.StartFrame, &r.EndFrame,
		&r.Landmarks, &paramsStr, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	if paramsStr.Valid {
		r.ParamsJSON = json.RawMessage(paramsStr.String)
	}
	return &r, nil
}

// InsertStates persists the full state history of a run in one
// transaction. Only the pose block of each entry is stored.
func (s *RunStore) InsertStates(runID string, history []slam.StateEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin states transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO slam_states (run_id, seq, stamp, x, y, theta)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare states insert: %w", err)
	}
	defer stmt.Close()

	for seq, entry := range history {
		_, err := stmt.Exec(runID, seq, entry.Stamp,
			entry.State.AtVec(0), entry.State.AtVec(1), entry.State.AtVec(2))
		if err != nil {
			return fmt.Errorf("insert state %d: %w", seq, err)
		}
	}
	return tx.Commit()
}

// ListStates returns a run's state history ordered by sequence number.
func (s *RunStore) ListStates(runID string) ([]StateRecord, error) {
	rows, err := s.db.Query(`
		SELECT seq, stamp, x, y, theta
		FROM slam_states
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query states: %w", err)
	}
	defer rows.Close()

	var states []StateRecord
	for rows.Next() {
		var rec StateRecord
		if err := rows.Scan(&rec.Seq, &rec.Stamp, &rec.X, &rec.Y, &rec.Theta); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		states = append(states, rec)
	}
	return states, rows.Err()
}

// InsertLandmarks persists the final landmark estimates of a run.
func (s *RunStore) InsertLandmarks(runID string, estimates []slam.LandmarkEstimate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin landmarks transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO slam_landmarks (run_id, slot, x, y)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare landmarks insert: %w", err)
	}
	defer stmt.Close()

	for _, est := range estimates {
		if _, err := stmt.Exec(runID, est.Slot, est.Position.X, est.Position.Y); err != nil {
			return fmt.Errorf("insert landmark %d: %w", est.Slot, err)
		}
	}
	return tx.Commit()
}

// ListLandmarks returns a run's landmark estimates ordered by slot.
func (s *RunStore) ListLandmarks(runID string) ([]LandmarkRecord, error) {
	rows, err := s.db.Query(`
		SELECT slot, x, y
		FROM slam_landmarks
		WHERE run_id = ?
		ORDER BY slot`, runID)
	if err != nil {
		return nil, fmt.Errorf("query landmarks: %w", err)
	}
	defer rows.Close()

	var landmarks []LandmarkRecord
	for rows.Next() {
		var rec LandmarkRecord
		if err := rows.Scan(&rec.Slot, &rec.X, &rec.Y); err != nil {
			return nil, fmt.Errorf("scan landmark: %w", err)
		}
		landmarks = append(landmarks, rec)
	}
	return landmarks, rows.Err()
}
