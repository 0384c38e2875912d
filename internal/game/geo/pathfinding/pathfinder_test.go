package pathfinding_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/geotest"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/pathfinding"
)

func newFinder(t *testing.T, b *geotest.Builder, tiers ...pathfinding.Tier) (*pathfinding.PathFinder, *geo.Engine) {
	t.Helper()
	e := b.Engine(t)
	cfg := pathfinding.DefaultConfig()
	if len(tiers) > 0 {
		cfg.Buffers = tiers
	}
	return pathfinding.New(e, cfg), e
}

func requireValidPath(t *testing.T, e *geo.Engine, path []geo.Point3D) {
	t.Helper()
	require.GreaterOrEqual(t, len(path), 2)
	for i := 1; i < len(path); i++ {
		assert.True(t, e.CanMoveToTarget(path[i-1], path[i], 0), "segment %d: %+v -> %+v", i, path[i-1], path[i])
	}
}

func pathLength(path []geo.Point3D) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		dx := float64(path[i].X - path[i-1].X)
		dy := float64(path[i].Y - path[i-1].Y)
		total += math.Hypot(dx, dy)
	}
	return total
}

func TestFindPathOpenField(t *testing.T) {
	pf, _ := newFinder(t, geotest.NewBuilder(0))

	from, to := geotest.World(100, 100, 0), geotest.World(150, 100, 0)
	path := pf.FindPath(from, to, 0, true)
	assert.Equal(t, []geo.Point3D{from, to}, path)

	st := pf.Stats()
	assert.Equal(t, int64(1), st.Requests)
	assert.Equal(t, int64(1), st.Found)
}

func TestFindPathSameCell(t *testing.T) {
	pf, _ := newFinder(t, geotest.NewBuilder(geotest.Floor))

	from := geotest.World(100, 100, 300)
	path := pf.FindPath(from, from, 0, true)
	assert.Equal(t, []geo.Point3D{geotest.World(100, 100, geotest.Floor)}, path)

	st := pf.Stats()
	assert.Equal(t, int64(1), st.Found)
	assert.Zero(t, st.NoPath)
}

func TestFindPathAroundWall(t *testing.T) {
	pf, e := newFinder(t, geotest.NewBuilder(100).WallX(215, 210, 250))

	from, to := geotest.World(200, 230, 100), geotest.World(230, 230, 100)
	require.False(t, e.CanMoveToTarget(from, to, 0))

	path := pf.FindPath(from, to, 0, true)
	require.NotNil(t, path)
	assert.Equal(t, from, path[0])
	assert.Equal(t, to, path[len(path)-1])
	assert.Greater(t, pathLength(path), pathLength([]geo.Point3D{from, to}))
	requireValidPath(t, e, path)

	detour := false
	for _, p := range path {
		gy := geo.GeoY(p.Y)
		_, wallTop := geotest.GeoXY(0, 210)
		_, wallBottom := geotest.GeoXY(0, 250)
		if gy < wallTop || gy > wallBottom {
			detour = true
		}
	}
	assert.True(t, detour, "path must pass beyond one end of the wall")
}

func TestFindPathNoGeodata(t *testing.T) {
	pf, _ := newFinder(t, geotest.NewBuilder(100))

	from := geotest.World(100, 100, 100)
	for range 3 {
		assert.Nil(t, pf.FindPath(from, geotest.World(geo.RegionCellsX+100, 100, 100), 0, true))
	}
	assert.Equal(t, int64(3), pf.Stats().NoGeodata)
}

func TestFindPathPoolExhausted(t *testing.T) {
	pf, _ := newFinder(t, geotest.NewBuilder(100), pathfinding.Tier{Size: 128, Count: 1})

	held := pf.Pool().Acquire(100)
	require.NotNil(t, held)

	from, to := geotest.World(100, 100, 100), geotest.World(130, 100, 100)
	assert.Nil(t, pf.FindPath(from, to, 0, true))
	assert.Equal(t, int64(1), pf.Stats().PoolExhausted)

	held.Release()
	assert.NotNil(t, pf.FindPath(from, to, 0, true))
}

func TestFindPathTooFarForAnyBuffer(t *testing.T) {
	pf, _ := newFinder(t, geotest.NewBuilder(100), pathfinding.Tier{Size: 64, Count: 4})

	assert.Nil(t, pf.FindPath(geotest.World(100, 100, 100), geotest.World(200, 100, 100), 0, true))
	assert.Equal(t, int64(1), pf.Stats().PoolExhausted)
}

func TestFindPathDisabledWithoutGeodata(t *testing.T) {
	pf := pathfinding.New(geo.NewEngine(geo.NewStore(), geo.DefaultConfig()), pathfinding.DefaultConfig())
	assert.False(t, pf.Enabled())

	assert.Nil(t, pf.FindPath(geo.Point3D{}, geo.Point3D{X: 100}, 0, true))
	assert.Equal(t, int64(1), pf.Stats().Disabled)
}

func TestFindPathDisable(t *testing.T) {
	pf, _ := newFinder(t, geotest.NewBuilder(100))
	require.True(t, pf.Enabled())

	pf.Disable()
	assert.False(t, pf.Enabled())
	assert.Nil(t, pf.FindPath(geotest.World(100, 100, 100), geotest.World(110, 100, 100), 0, true))
}

func TestFindPathDeterministicOnRecycledBuffer(t *testing.T) {
	pf, _ := newFinder(t, geotest.NewBuilder(100).WallX(215, 210, 250), pathfinding.Tier{Size: 256, Count: 1})
	from, to := geotest.World(200, 230, 100), geotest.World(230, 236, 100)

	first := pf.FindPath(from, to, 0, true)
	require.NotNil(t, first)

	for range 5 {
		assert.Equal(t, first, pf.FindPath(from, to, 0, true))
	}
	assert.Equal(t, 1, pf.Pool().Stats()[0].Allocated)
}

func TestFindPathConcurrentIsolation(t *testing.T) {
	const lanes = 8

	b := geotest.NewBuilder(100)
	laneY := func(i int) int32 { return int32(100 + i*60) }
	for i := range lanes {
		y := laneY(i)
		b.WallX(130, y-10, y+10)
	}
	pf, e := newFinder(t, b, pathfinding.Tier{Size: 256, Count: lanes})

	results := make([][]geo.Point3D, lanes)
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := range lanes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			y := laneY(i)
			results[i] = pf.FindPath(geotest.World(100, y, 100), geotest.World(160, y, 100), 0, true)
		}()
	}
	close(start)
	wg.Wait()

	for i, path := range results {
		y := laneY(i)
		require.NotNil(t, path, "lane %d", i)
		assert.Equal(t, geotest.World(160, y, 100), path[len(path)-1])
		_, gy := geotest.GeoXY(0, y)
		for _, p := range path {
			assert.InDelta(t, gy, geo.GeoY(p.Y), 30, "lane %d waypoint %+v strays", i, p)
		}
		requireValidPath(t, e, path)

		again := pf.FindPath(geotest.World(100, y, 100), geotest.World(160, y, 100), 0, true)
		assert.Equal(t, path, again, "lane %d", i)
	}
}

func TestFindPathSmoothingOnlyRepeatsForPlayables(t *testing.T) {
	pf, e := newFinder(t, geotest.NewBuilder(100).WallX(215, 200, 260).WallX(225, 180, 235))
	from, to := geotest.World(200, 230, 100), geotest.World(240, 230, 100)

	playable := pf.FindPath(from, to, 0, true)
	npc := pf.FindPath(from, to, 0, false)
	require.NotNil(t, playable)
	require.NotNil(t, npc)

	assert.LessOrEqual(t, len(playable), len(npc))
	requireValidPath(t, e, playable)
	requireValidPath(t, e, npc)
}

func TestFindPathOrthogonalStrategy(t *testing.T) {
	e := geotest.NewBuilder(100).Engine(t)
	cfg := pathfinding.DefaultConfig()
	cfg.AdvancedDiagonalStrategy = false
	pf := pathfinding.New(e, cfg)

	from, to := geotest.World(300, 300, 100), geotest.World(320, 315, 100)
	path := pf.FindPath(from, to, 0, true)
	require.NotNil(t, path)
	assert.Equal(t, from, path[0])
	assert.Equal(t, to, path[len(path)-1])
}

func TestFindPathStats(t *testing.T) {
	pf, _ := newFinder(t, geotest.NewBuilder(100))
	from := geotest.World(100, 100, 100)

	pf.FindPath(from, geotest.World(120, 120, 100), 0, false)
	pf.FindPath(from, geotest.World(geo.RegionCellsX+5, 100, 100), 0, false)

	st := pf.Stats()
	assert.Equal(t, int64(2), st.Requests)
	assert.Equal(t, int64(1), st.Found)
	assert.Equal(t, int64(1), st.NoGeodata)
	assert.Zero(t, st.NoPath)
	assert.GreaterOrEqual(t, st.AvgLatency, time.Duration(0))
}
