package geo

import "fmt"

// Region answers point queries for one 2048×2048 cell tile.
// Coordinates are absolute geo coordinates; implementations reduce them
// to local offsets themselves.
type Region interface {
	HasGeo() bool
	NearestZ(geoX, geoY, worldZ int32) int32
	NextLowerZ(geoX, geoY, worldZ int32) int32
	NextHigherZ(geoX, geoY, worldZ int32) int32
	NearestNSWE(geoX, geoY, worldZ int32) byte
}

// NullRegion stands in for tiles without a geodata file.
// Every cell is open and heights echo the query Z.
type NullRegion struct{}

// noData is shared by every empty slot of a Store.
var noData Region = NullRegion{}

func (NullRegion) HasGeo() bool                         { return false }
func (NullRegion) NearestZ(_, _, worldZ int32) int32    { return worldZ }
func (NullRegion) NextLowerZ(_, _, worldZ int32) int32  { return worldZ }
func (NullRegion) NextHigherZ(_, _, worldZ int32) int32 { return worldZ }
func (NullRegion) NearestNSWE(_, _, _ int32) byte       { return NSWEAll }

// TileRegion represents a loaded geodata region file (.l2j).
// Each region contains 256×256 blocks, each block has 8×8 cells.
// Immutable after ParseRegion; safe for concurrent readers.
type TileRegion struct {
	blocks [RegionBlocks]Block
	data   []byte
	unmap  func() error
}

// ParseRegion parses a .l2j file's raw bytes into a TileRegion.
// Blocks alias data, so data must stay valid until Close.
func ParseRegion(data []byte) (*TileRegion, error) {
	r := &TileRegion{data: data}
	offset := 0

	for i := range RegionBlocks {
		block, consumed, err := ParseBlock(data, offset)
		if err != nil {
			return nil, fmt.Errorf("load region block %d: %w", i, err)
		}
		r.blocks[i] = block
		offset += consumed
	}

	return r, nil
}

// block returns the block holding absolute geo cell (geoX, geoY).
func (r *TileRegion) block(geoX, geoY int32) Block {
	return r.blocks[BlockXY(geoX, geoY)]
}

// Block returns the block at (blockX, blockY) indices within the region.
func (r *TileRegion) Block(blockX, blockY int32) Block {
	return r.blocks[blockX*RegionBlocksY+blockY]
}

func (r *TileRegion) HasGeo() bool {
	return true
}

func (r *TileRegion) NearestZ(geoX, geoY, worldZ int32) int32 {
	cx, cy := CellXY(geoX, geoY)
	return r.block(geoX, geoY).NearestZ(cx, cy, worldZ)
}

func (r *TileRegion) NextLowerZ(geoX, geoY, worldZ int32) int32 {
	cx, cy := CellXY(geoX, geoY)
	return r.block(geoX, geoY).NextLowerZ(cx, cy, worldZ)
}

func (r *TileRegion) NextHigherZ(geoX, geoY, worldZ int32) int32 {
	cx, cy := CellXY(geoX, geoY)
	return r.block(geoX, geoY).NextHigherZ(cx, cy, worldZ)
}

func (r *TileRegion) NearestNSWE(geoX, geoY, worldZ int32) byte {
	cx, cy := CellXY(geoX, geoY)
	return r.block(geoX, geoY).NearestNSWE(cx, cy, worldZ)
}

// Bytes returns the raw region file contents.
func (r *TileRegion) Bytes() []byte {
	return r.data
}

// Close releases the file mapping. The region must not be queried afterwards.
func (r *TileRegion) Close() error {
	if r.unmap == nil {
		return nil
	}
	err := r.unmap()
	r.unmap = nil
	return err
}
