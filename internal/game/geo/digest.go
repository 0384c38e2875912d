package geo

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/blake2b"
)

// RegionStats summarizes the block composition of a loaded region.
type RegionStats struct {
	Flat       int   `json:"flat"`
	Complex    int   `json:"complex"`
	Multilayer int   `json:"multilayer"`
	MaxLayers  int   `json:"max_layers"`
	MinHeight  int32 `json:"min_height"`
	MaxHeight  int32 `json:"max_height"`
	Blocked    int   `json:"blocked_cells"` // cells with at least one closed direction
}

// Digest returns the hex BLAKE2b-256 of the raw region file.
// Two servers holding the same digest answer every query identically.
func (r *TileRegion) Digest() string {
	sum := blake2b.Sum256(r.data)
	return hex.EncodeToString(sum[:])
}

// Stats walks every block of the region.
func (r *TileRegion) Stats() RegionStats {
	st := RegionStats{MinHeight: math.MaxInt32, MaxHeight: math.MinInt32}

	observe := func(raw uint16) {
		h := layerHeight(raw)
		st.MinHeight = min(st.MinHeight, h)
		st.MaxHeight = max(st.MaxHeight, h)
		if layerNSWE(raw) != NSWEAll {
			st.Blocked++
		}
	}

	for _, b := range r.blocks {
		switch blk := b.(type) {
		case *FlatBlock:
			st.Flat++
			h := int32(blk.height)
			st.MinHeight = min(st.MinHeight, h)
			st.MaxHeight = max(st.MaxHeight, h)
		case *ComplexBlock:
			st.Complex++
			for i := 0; i < len(blk.data); i += 2 {
				observe(binary.LittleEndian.Uint16(blk.data[i:]))
			}
		case *MultilayerBlock:
			st.Multilayer++
			for cell := range BlockCells {
				cx, cy := int32(cell/BlockCellsY), int32(cell%BlockCellsY)
				layers := blk.layers(cx, cy)
				st.MaxLayers = max(st.MaxLayers, len(layers)/2)
				for i := 0; i < len(layers); i += 2 {
					observe(binary.LittleEndian.Uint16(layers[i:]))
				}
			}
		}
	}

	if st.Multilayer == 0 && st.Flat+st.Complex > 0 {
		st.MaxLayers = 1
	}
	return st
}
