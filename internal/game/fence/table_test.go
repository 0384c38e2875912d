package fence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/fence"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/geotest"
)

func TestTableAddRemove(t *testing.T) {
	table := fence.NewTable()
	require.NoError(t, table.Add(fence.New(2, 1000, 2000, 100, 200, 100, 1, fence.Closed)))
	require.NoError(t, table.Add(fence.New(1, 3000, 2000, 100, 200, 100, 1, fence.Opened)))

	err := table.Add(fence.New(2, 0, 0, 0, 10, 10, 1, fence.Closed))
	assert.ErrorIs(t, err, fence.ErrDuplicateFence)

	err = table.Add(fence.New(3, 0, 0, 0, 0, 10, 1, fence.Closed))
	assert.ErrorIs(t, err, fence.ErrInvalidFence)

	list := table.List()
	require.Len(t, list, 2)
	assert.Equal(t, int32(1), list[0].ID)
	assert.Equal(t, int32(2), list[1].ID)

	assert.True(t, table.FenceBetween(800, 2000, 100, 1200, 2000, 100, 0))

	require.NoError(t, table.Remove(2))
	assert.False(t, table.FenceBetween(800, 2000, 100, 1200, 2000, 100, 0))
	assert.Equal(t, 1, table.Len())

	assert.ErrorIs(t, table.Remove(2), fence.ErrFenceNotFound)
	_, ok := table.Get(2)
	assert.False(t, ok)
}

func TestFenceBetweenCornerTile(t *testing.T) {
	table := fence.NewTable()
	// inside tile 20_18; the segment ends lie in tiles 19_18 and 20_19
	require.NoError(t, table.Add(fence.New(4, 30, 21000, 0, 40, 20, 1, fence.Closed)))

	assert.True(t, table.FenceBetween(-100, 100, 0, 100, 32868, 0, 0))
	assert.True(t, table.FenceBetween(100, 32868, 0, -100, 100, 0, 0))
}

func TestTableSetState(t *testing.T) {
	table := fence.NewTable()
	require.NoError(t, table.Add(fence.New(1, 1000, 2000, 100, 200, 100, 1, fence.Opened)))

	assert.False(t, table.FenceBetween(800, 2000, 100, 1200, 2000, 100, 0))

	require.NoError(t, table.SetState(1, fence.ClosedHidden))
	assert.True(t, table.FenceBetween(800, 2000, 100, 1200, 2000, 100, 0))

	require.NoError(t, table.SetState(1, fence.Hidden))
	assert.False(t, table.FenceBetween(800, 2000, 100, 1200, 2000, 100, 0))

	assert.ErrorIs(t, table.SetState(5, fence.Closed), fence.ErrFenceNotFound)
}

func TestTableInstances(t *testing.T) {
	table := fence.NewTable()
	f := fence.New(1, 1000, 2000, 100, 200, 100, 1, fence.Closed)
	f.InstanceID = 3
	require.NoError(t, table.Add(f))

	assert.False(t, table.FenceBetween(800, 2000, 100, 1200, 2000, 100, 0))
	assert.True(t, table.FenceBetween(800, 2000, 100, 1200, 2000, 100, 3))
}

func TestTableAcrossTiles(t *testing.T) {
	table := fence.NewTable()
	// straddles world x 0, the border between tiles 19 and 20
	require.NoError(t, table.Add(fence.New(1, 0, 2000, 100, 40, 100, 1, fence.Closed)))

	assert.True(t, table.FenceBetween(-500, 2000, 100, -10, 2000, 100, 0))
	assert.True(t, table.FenceBetween(500, 2000, 100, 10, 2000, 100, 0))
	assert.True(t, table.FenceBetween(-500, 2000, 100, 500, 2000, 100, 0))
}

func TestEngineHonoursFences(t *testing.T) {
	from := geotest.World(2, 10, 100)
	to := geotest.World(30, 10, 100)
	mid := geotest.World(16, 10, 100)

	table := fence.NewTable()
	require.NoError(t, table.Add(fence.New(1, mid.X, mid.Y, 100, 32, 256, 1, fence.Closed)))

	e := geotest.NewBuilder(100).Engine(t, geo.WithFences(table))
	assert.False(t, e.CanSeeTarget(from, to, 0))
	assert.False(t, e.CanMoveToTarget(from, to, 0))
	assert.Equal(t, geo.Point3D{X: from.X, Y: from.Y, Z: 100}, e.GetValidLocation(from, to, 0))

	require.NoError(t, table.SetState(1, fence.Opened))
	assert.True(t, e.CanSeeTarget(from, to, 0))
	assert.True(t, e.CanMoveToTarget(from, to, 0))
}
