package door

import "errors"

var (
	// ErrDoorNotFound is returned for an unknown door ID.
	ErrDoorNotFound = errors.New("door not found")

	// ErrDuplicateDoor is returned when a door ID is registered twice.
	ErrDuplicateDoor = errors.New("duplicate door")

	// ErrInvalidDoor is returned for a door definition that cannot collide.
	ErrInvalidDoor = errors.New("invalid door")
)
