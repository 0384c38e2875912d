package geo

import (
	"encoding/binary"
	"fmt"
)

// Block provides height and NSWE data for 8x8 cells.
// Cell coordinates are local to the block (0..7).
type Block interface {
	// NearestZ returns the layer height closest to worldZ.
	NearestZ(cellX, cellY, worldZ int32) int32
	// NextLowerZ returns the highest layer at or below worldZ, or worldZ if none.
	NextLowerZ(cellX, cellY, worldZ int32) int32
	// NextHigherZ returns the lowest layer at or above worldZ, or worldZ if none.
	NextHigherZ(cellX, cellY, worldZ int32) int32
	// NearestNSWE returns the NSWE mask of the layer closest to worldZ.
	NearestNSWE(cellX, cellY, worldZ int32) byte
}

// FlatBlock: all 64 cells share one height and allow all movement.
// Binary format: 1 byte type (0x00) + 2 bytes int16 height (LE).
type FlatBlock struct {
	height int16
}

func (b *FlatBlock) NearestZ(_, _, _ int32) int32 {
	return int32(b.height)
}

func (b *FlatBlock) NextLowerZ(_, _, worldZ int32) int32 {
	if int32(b.height) <= worldZ {
		return int32(b.height)
	}
	return worldZ
}

func (b *FlatBlock) NextHigherZ(_, _, worldZ int32) int32 {
	if int32(b.height) >= worldZ {
		return int32(b.height)
	}
	return worldZ
}

func (b *FlatBlock) NearestNSWE(_, _, _ int32) byte {
	return NSWEAll
}

// ComplexBlock: each of the 64 cells has its own height+NSWE packed into uint16.
// Binary format: 1 byte type (0x01) + 64×2 bytes (128 bytes).
// Bit packing: [15:4] = height*2 (signed), [3:0] = NSWE mask.
// data aliases the region file mapping.
type ComplexBlock struct {
	data []byte
}

func (b *ComplexBlock) cellData(cellX, cellY int32) uint16 {
	return binary.LittleEndian.Uint16(b.data[(cellX*BlockCellsY+cellY)*2:])
}

func (b *ComplexBlock) NearestZ(cellX, cellY, _ int32) int32 {
	return layerHeight(b.cellData(cellX, cellY))
}

func (b *ComplexBlock) NextLowerZ(cellX, cellY, worldZ int32) int32 {
	z := layerHeight(b.cellData(cellX, cellY))
	if z <= worldZ {
		return z
	}
	return worldZ
}

func (b *ComplexBlock) NextHigherZ(cellX, cellY, worldZ int32) int32 {
	z := layerHeight(b.cellData(cellX, cellY))
	if z >= worldZ {
		return z
	}
	return worldZ
}

func (b *ComplexBlock) NearestNSWE(cellX, cellY, _ int32) byte {
	return layerNSWE(b.cellData(cellX, cellY))
}

// MultilayerBlock: each cell may have multiple Z layers (bridges, floors).
// Binary format: 1 byte type (0x02) + variable-length data.
// Per cell: 1 byte nLayers + nLayers×2 bytes (height+NSWE per layer).
// data aliases the region file mapping.
type MultilayerBlock struct {
	data        []byte
	cellOffsets [BlockCells]uint16 // byte offset into data for each cell
}

// layers returns the packed layer words of one cell.
func (b *MultilayerBlock) layers(cellX, cellY int32) []byte {
	offset := int(b.cellOffsets[cellX*BlockCellsY+cellY])
	n := int(b.data[offset])
	return b.data[offset+1 : offset+1+n*2]
}

// nearestLayer returns the packed word of the layer closest to worldZ.
// Ties resolve to the first layer in file order.
func (b *MultilayerBlock) nearestLayer(cellX, cellY, worldZ int32) uint16 {
	layers := b.layers(cellX, cellY)

	var best uint16
	bestDist := int32(-1)
	for i := 0; i < len(layers); i += 2 {
		raw := binary.LittleEndian.Uint16(layers[i:])
		dist := abs32(layerHeight(raw) - worldZ)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = raw
		}
	}
	return best
}

func (b *MultilayerBlock) NearestZ(cellX, cellY, worldZ int32) int32 {
	return layerHeight(b.nearestLayer(cellX, cellY, worldZ))
}

func (b *MultilayerBlock) NextLowerZ(cellX, cellY, worldZ int32) int32 {
	layers := b.layers(cellX, cellY)

	found := false
	var lower int32
	for i := 0; i < len(layers); i += 2 {
		z := layerHeight(binary.LittleEndian.Uint16(layers[i:]))
		if z == worldZ {
			return z
		}
		if z < worldZ && (!found || z > lower) {
			lower = z
			found = true
		}
	}
	if !found {
		return worldZ
	}
	return lower
}

func (b *MultilayerBlock) NextHigherZ(cellX, cellY, worldZ int32) int32 {
	layers := b.layers(cellX, cellY)

	found := false
	var higher int32
	for i := 0; i < len(layers); i += 2 {
		z := layerHeight(binary.LittleEndian.Uint16(layers[i:]))
		if z == worldZ {
			return z
		}
		if z > worldZ && (!found || z < higher) {
			higher = z
			found = true
		}
	}
	if !found {
		return worldZ
	}
	return higher
}

func (b *MultilayerBlock) NearestNSWE(cellX, cellY, worldZ int32) byte {
	return layerNSWE(b.nearestLayer(cellX, cellY, worldZ))
}

// LayerCount returns the number of layers stored for a cell.
func (b *MultilayerBlock) LayerCount(cellX, cellY int32) int {
	return int(b.data[b.cellOffsets[cellX*BlockCellsY+cellY]])
}

func layerHeight(raw uint16) int32 {
	return int32(int16(raw&0xFFF0) >> 1)
}

func layerNSWE(raw uint16) byte {
	return byte(raw & 0x000F)
}

// ParseBlock reads one block from data at the given offset.
// Returns the parsed Block and the number of bytes consumed.
// Complex and multilayer blocks keep slices into data, data must outlive them.
func ParseBlock(data []byte, offset int) (Block, int, error) {
	if offset >= len(data) {
		return nil, 0, fmt.Errorf("parse block at offset %d: %w", offset, ErrTruncated)
	}

	blockType := data[offset]
	offset++

	switch blockType {
	case BlockTypeFlat:
		if offset+2 > len(data) {
			return nil, 0, fmt.Errorf("parse flat block at offset %d: %w", offset, ErrTruncated)
		}
		height := int16(binary.LittleEndian.Uint16(data[offset:]))
		return &FlatBlock{height: height}, 3, nil // 1 type + 2 height

	case BlockTypeComplex:
		need := BlockCells * 2
		if offset+need > len(data) {
			return nil, 0, fmt.Errorf("parse complex block at offset %d: %w", offset, ErrTruncated)
		}
		return &ComplexBlock{data: data[offset : offset+need : offset+need]}, 1 + need, nil

	case BlockTypeMultilayer:
		start := offset
		b := &MultilayerBlock{}

		for cellIdx := range BlockCells {
			if offset >= len(data) {
				return nil, 0, fmt.Errorf("parse multilayer block cell %d: %w", cellIdx, ErrTruncated)
			}
			b.cellOffsets[cellIdx] = uint16(offset - start)
			nLayers := int(data[offset])
			if nLayers <= 0 || nLayers > MaxLayers {
				return nil, 0, fmt.Errorf("parse multilayer block cell %d: %w: %d", cellIdx, ErrInvalidLayerCount, nLayers)
			}
			offset += 1 + nLayers*2
		}
		if offset > len(data) {
			return nil, 0, fmt.Errorf("parse multilayer block at offset %d: %w", start, ErrTruncated)
		}

		b.data = data[start:offset:offset]
		return b, 1 + (offset - start), nil

	default:
		return nil, 0, fmt.Errorf("parse block at offset %d: %w 0x%02X", offset-1, ErrUnknownBlockType, blockType)
	}
}
