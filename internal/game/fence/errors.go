package fence

import "errors"

var (
	// ErrFenceNotFound is returned for an unknown fence ID.
	ErrFenceNotFound = errors.New("fence not found")

	// ErrDuplicateFence is returned when a fence ID is registered twice.
	ErrDuplicateFence = errors.New("duplicate fence")

	// ErrInvalidState is returned for an unknown fence state name.
	ErrInvalidState = errors.New("invalid fence state")

	// ErrInvalidFence is returned for a fence without area.
	ErrInvalidFence = errors.New("invalid fence")
)
