// Package slam implements EKF-SLAM with unknown correspondences over a
// time-ordered stream of odometry and range-bearing events.
//
// Responsibilities: joint pose+landmark state estimation, motion
// prediction, Mahalanobis-distance data association, and the Kalman
// measurement update. Key types: Filter, StateStore, Motion, Measurement.
//
// The filter is strictly sequential: every event must be fully applied
// before the next one is processed. Dataset loading, persistence and
// plotting live in internal/mrclam, internal/slamdb and internal/report;
// this package never touches files or the database.
package slam
