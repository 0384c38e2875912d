package geo

import "errors"

var (
	// ErrUnknownBlockType is returned when a block header byte is not flat, complex or multilayer.
	ErrUnknownBlockType = errors.New("unknown block type")

	// ErrTruncated is returned when a region file ends inside a block.
	ErrTruncated = errors.New("truncated geodata")

	// ErrInvalidLayerCount is returned for a multilayer cell with 0 or more than MaxLayers layers.
	ErrInvalidLayerCount = errors.New("invalid layer count")

	// ErrTileOutOfRange is returned for tile coordinates outside the 32x32 region grid.
	ErrTileOutOfRange = errors.New("tile out of range")
)
