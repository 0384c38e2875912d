package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/geotest"
)

func TestInspect(t *testing.T) {
	b := geotest.NewBuilder(100).
		WallX(3, 0, 7).
		Layers(20, 20, geotest.Pack(304, geo.NSWEAll), geotest.Pack(-40, geo.NSWEAll))
	path := filepath.Join(t.TempDir(), fmt.Sprintf(geo.FileNameFormat, geotest.TileX, geotest.TileY))
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o600))

	rep, err := inspect(path, false)
	require.NoError(t, err)
	assert.Equal(t, "20_18", rep.Tile)
	assert.Equal(t, len(b.Bytes()), rep.Size)
	assert.Equal(t, b.Region(t).Digest(), rep.Digest)
	assert.Equal(t, 1, rep.Stats.Complex)
	assert.Equal(t, 1, rep.Stats.Multilayer)
	assert.Equal(t, 2, rep.Stats.MaxLayers)
	assert.Equal(t, int32(-40), rep.Stats.MinHeight)
	assert.Equal(t, int32(304), rep.Stats.MaxHeight)
	assert.Equal(t, 8, rep.Stats.Blocked)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, rep, true))
	var decoded report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, rep, decoded)

	buf.Reset()
	require.NoError(t, writeReport(&buf, rep, false))
	assert.Contains(t, buf.String(), "1 complex, 1 multilayer")
	assert.Contains(t, buf.String(), rep.Digest)
}

func TestInspectBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.l2j")
	require.NoError(t, os.WriteFile(path, []byte{0x07}, 0o600))

	_, err := inspect(path, false)
	assert.ErrorIs(t, err, geo.ErrUnknownBlockType)
}
