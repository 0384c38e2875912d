// Package geotest builds synthetic geodata regions for tests.
package geotest

import (
	"encoding/binary"
	"testing"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
)

// Tile placed by Store and Engine. Local cell (0,0) of this tile is geo cell
// (TileX*2048, TileY*2048).
const (
	TileX = 20
	TileY = 18
)

// Floor is a base height that complex and multilayer cells store exactly.
// Pack rounds other heights down to a multiple of 8.
const Floor = 96

// Pack encodes one layer word. Heights are stored in 8 unit steps.
func Pack(height int16, nswe byte) uint16 {
	return uint16((height>>3)<<4) | uint16(nswe&0x0F)
}

// Builder assembles a .l2j region in memory. Blocks without explicit cells
// are written flat at the base height; touched blocks become complex, or
// multilayer once a cell holds more than one layer.
type Builder struct {
	height int16
	blocks map[int32]*[geo.BlockCells][]uint16
}

// NewBuilder starts a flat region at the given height.
func NewBuilder(height int16) *Builder {
	return &Builder{height: height, blocks: make(map[int32]*[geo.BlockCells][]uint16)}
}

func (b *Builder) cells(localX, localY int32) (*[geo.BlockCells][]uint16, int) {
	idx := (localX/geo.BlockCellsX)*geo.RegionBlocksY + localY/geo.BlockCellsY
	blk, ok := b.blocks[idx]
	if !ok {
		blk = new([geo.BlockCells][]uint16)
		for i := range blk {
			blk[i] = []uint16{Pack(b.height, geo.NSWEAll)}
		}
		b.blocks[idx] = blk
	}
	return blk, int((localX%geo.BlockCellsX)*geo.BlockCellsY + localY%geo.BlockCellsY)
}

// Cell sets a single-layer cell at region-local coordinates.
func (b *Builder) Cell(localX, localY int32, height int16, nswe byte) *Builder {
	blk, i := b.cells(localX, localY)
	blk[i] = []uint16{Pack(height, nswe)}
	return b
}

// Layers sets the packed layer words of a cell, highest first as in client files.
func (b *Builder) Layers(localX, localY int32, layers ...uint16) *Builder {
	blk, i := b.cells(localX, localY)
	blk[i] = append([]uint16(nil), layers...)
	return b
}

// WallX closes every cell of column localX from y0 to y1 inclusive.
func (b *Builder) WallX(localX, y0, y1 int32) *Builder {
	for y := y0; y <= y1; y++ {
		b.Cell(localX, y, b.height, 0)
	}
	return b
}

// Bytes serializes the region in .l2j layout.
func (b *Builder) Bytes() []byte {
	out := make([]byte, 0, geo.RegionBlocks*3+len(b.blocks)*geo.BlockCells*4)
	var word [2]byte

	for idx := range int32(geo.RegionBlocks) {
		blk, ok := b.blocks[idx]
		if !ok {
			binary.LittleEndian.PutUint16(word[:], uint16(b.height))
			out = append(out, geo.BlockTypeFlat, word[0], word[1])
			continue
		}

		multi := false
		for _, layers := range blk {
			if len(layers) != 1 {
				multi = true
				break
			}
		}

		if !multi {
			out = append(out, geo.BlockTypeComplex)
			for _, layers := range blk {
				binary.LittleEndian.PutUint16(word[:], layers[0])
				out = append(out, word[0], word[1])
			}
			continue
		}

		out = append(out, geo.BlockTypeMultilayer)
		for _, layers := range blk {
			out = append(out, byte(len(layers)))
			for _, l := range layers {
				binary.LittleEndian.PutUint16(word[:], l)
				out = append(out, word[0], word[1])
			}
		}
	}
	return out
}

// Region parses the built bytes.
func (b *Builder) Region(tb testing.TB) *geo.TileRegion {
	tb.Helper()
	r, err := geo.ParseRegion(b.Bytes())
	if err != nil {
		tb.Fatalf("parse synthetic region: %v", err)
	}
	return r
}

// Store returns a store holding the built region at (TileX, TileY).
func (b *Builder) Store(tb testing.TB) *geo.Store {
	tb.Helper()
	s := geo.NewStore()
	if err := s.SetRegion(TileX, TileY, b.Region(tb)); err != nil {
		tb.Fatalf("set synthetic region: %v", err)
	}
	return s
}

// Engine returns a query engine over Store with default tunables.
func (b *Builder) Engine(tb testing.TB, opts ...geo.Option) *geo.Engine {
	tb.Helper()
	return geo.NewEngine(b.Store(tb), geo.DefaultConfig(), opts...)
}

// GeoXY converts region-local cell coordinates to absolute geo coordinates.
func GeoXY(localX, localY int32) (int32, int32) {
	return TileX*geo.RegionCellsX + localX, TileY*geo.RegionCellsY + localY
}

// World returns the world position at the center of a region-local cell.
func World(localX, localY, z int32) geo.Point3D {
	gx, gy := GeoXY(localX, localY)
	return geo.Point3D{X: geo.WorldX(gx), Y: geo.WorldY(gy), Z: z}
}
