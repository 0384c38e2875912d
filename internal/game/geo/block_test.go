package geo

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packCell packs height and NSWE into the .l2j layer word.
// Heights are quantized to 8 world units.
func packCell(height int16, nswe byte) uint16 {
	h := height >> 3
	return uint16(h<<4) | uint16(nswe)
}

func appendWord(data []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(data, v)
}

func TestParseFlatBlock(t *testing.T) {
	data := appendWord([]byte{BlockTypeFlat}, uint16(0xFE0C)) // -500

	b, n, err := ParseBlock(data, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, int32(-500), b.NearestZ(0, 0, 0))
	assert.Equal(t, int32(-500), b.NearestZ(7, 7, 1000))
	assert.Equal(t, NSWEAll, b.NearestNSWE(3, 3, 0))
	assert.Equal(t, int32(-500), b.NextLowerZ(0, 0, 0))
	assert.Equal(t, int32(-600), b.NextLowerZ(0, 0, -600))
	assert.Equal(t, int32(-500), b.NextHigherZ(0, 0, -600))
	assert.Equal(t, int32(0), b.NextHigherZ(0, 0, 0))
}

func TestParseComplexBlock(t *testing.T) {
	data := []byte{BlockTypeComplex}
	for cell := range BlockCells {
		switch cell {
		case 0:
			data = appendWord(data, packCell(96, NSWEAll))
		case 1*BlockCellsY + 0:
			data = appendWord(data, packCell(200, NSWENorth))
		case 2:
			data = appendWord(data, packCell(-104, NSWEEast|NSWESouth))
		default:
			data = appendWord(data, packCell(0, NSWEAll))
		}
	}

	b, n, err := ParseBlock(data, 0)
	require.NoError(t, err)
	assert.Equal(t, 1+BlockCells*2, n)

	assert.Equal(t, int32(96), b.NearestZ(0, 0, 0))
	assert.Equal(t, NSWEAll, b.NearestNSWE(0, 0, 0))

	assert.Equal(t, int32(200), b.NearestZ(1, 0, 0))
	assert.Equal(t, NSWENorth, b.NearestNSWE(1, 0, 0))

	assert.Equal(t, int32(-104), b.NearestZ(0, 2, 500))
	assert.Equal(t, NSWEEast|NSWESouth, b.NearestNSWE(0, 2, 0))

	assert.Equal(t, int32(96), b.NextLowerZ(0, 0, 100))
	assert.Equal(t, int32(50), b.NextLowerZ(0, 0, 50))
	assert.Equal(t, int32(96), b.NextHigherZ(0, 0, 50))
}

func TestParseMultilayerBlock(t *testing.T) {
	data := []byte{BlockTypeMultilayer}
	for cell := range BlockCells {
		if cell == 0 {
			data = append(data, 3)
			data = appendWord(data, packCell(400, NSWEAll))
			data = appendWord(data, packCell(200, NSWENorth|NSWESouth))
			data = appendWord(data, packCell(0, NSWEAll))
			continue
		}
		data = append(data, 1)
		data = appendWord(data, packCell(16, NSWEAll))
	}
	data = append(data, 0xAA) // trailing byte belongs to the next block

	b, n, err := ParseBlock(data, 0)
	require.NoError(t, err)
	assert.Equal(t, len(data)-1, n)

	ml, ok := b.(*MultilayerBlock)
	require.True(t, ok)
	assert.Equal(t, 3, ml.LayerCount(0, 0))
	assert.Equal(t, 1, ml.LayerCount(7, 7))

	tests := []struct {
		name   string
		z      int32
		near   int32
		lower  int32
		higher int32
		nswe   byte
	}{
		{"below all", -100, 0, -100, 0, NSWEAll},
		{"on ground", 0, 0, 0, 0, NSWEAll},
		{"between ground and bridge", 90, 0, 0, 200, NSWEAll},
		{"closer to bridge", 150, 200, 0, 200, NSWENorth | NSWESouth},
		{"on bridge", 200, 200, 200, 200, NSWENorth | NSWESouth},
		{"above all", 1000, 400, 400, 1000, NSWEAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.near, b.NearestZ(0, 0, tt.z))
			assert.Equal(t, tt.lower, b.NextLowerZ(0, 0, tt.z))
			assert.Equal(t, tt.higher, b.NextHigherZ(0, 0, tt.z))
			assert.Equal(t, tt.nswe, b.NearestNSWE(0, 0, tt.z))
		})
	}

	// Equidistant layers resolve to the first stored.
	assert.Equal(t, int32(400), b.NearestZ(0, 0, 300))
}

func TestParseBlockErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"unknown type", []byte{0x07, 0, 0}, ErrUnknownBlockType},
		{"flat truncated", []byte{BlockTypeFlat, 0x01}, ErrTruncated},
		{"complex truncated", append([]byte{BlockTypeComplex}, make([]byte, 10)...), ErrTruncated},
		{"zero layers", []byte{BlockTypeMultilayer, 0}, ErrInvalidLayerCount},
		{"too many layers", []byte{BlockTypeMultilayer, MaxLayers + 1}, ErrInvalidLayerCount},
		{"layers truncated", []byte{BlockTypeMultilayer, 2, 0, 0}, ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseBlock(tt.data, 0)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseBlockAtOffset(t *testing.T) {
	data := []byte{0xFF, 0xFF, BlockTypeFlat}
	data = appendWord(data, 64)

	b, n, err := ParseBlock(data, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int32(64), b.NearestZ(0, 0, 0))
}

func TestLayerHeightQuantization(t *testing.T) {
	assert.Equal(t, int32(96), layerHeight(packCell(96, 0)))
	assert.Equal(t, int32(96), layerHeight(packCell(100, 0)))
	assert.Equal(t, int32(-104), layerHeight(packCell(-104, 0)))
	assert.Equal(t, NSWEWest, layerNSWE(packCell(0, NSWEWest)))
}
