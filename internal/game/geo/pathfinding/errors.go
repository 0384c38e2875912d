package pathfinding

import "errors"

// ErrInvalidBuffers is returned when a buffer tier definition cannot be parsed.
var ErrInvalidBuffers = errors.New("invalid pathfinding buffers")
