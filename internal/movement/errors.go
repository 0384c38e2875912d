package movement

import "errors"

var (
	// ErrZOutOfRange is returned for a destination outside the playable height band.
	ErrZOutOfRange = errors.New("z coordinate out of range")

	// ErrTooFar is returned for a single move longer than MaxMoveDistance.
	ErrTooFar = errors.New("movement distance too large")

	// ErrTooClose is returned for a non-zero move shorter than MinMoveDistance.
	ErrTooClose = errors.New("movement distance too small")
)
