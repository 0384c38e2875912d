package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/geotest"
)

func TestCanMoveToTargetOpen(t *testing.T) {
	e := geotest.NewBuilder(100).Engine(t)

	from, to := geotest.World(0, 0, 100), geotest.World(37, 11, 100)
	assert.True(t, e.CanMoveToTarget(from, to, 0))
	assert.Equal(t, to, e.GetValidLocation(from, to, 0))

	// Z of the target request is snapped to the floor.
	got := e.GetValidLocation(from, geotest.World(5, 5, 180), 0)
	assert.Equal(t, int32(100), got.Z)
}

func TestCanMoveToTargetWall(t *testing.T) {
	b := geotest.NewBuilder(geotest.Floor).WallX(20, 0, 40)
	from, to := geotest.World(10, 20, geotest.Floor), geotest.World(30, 20, geotest.Floor)

	t.Run("avoid obstructed", func(t *testing.T) {
		e := b.Engine(t)
		assert.False(t, e.CanMoveToTarget(from, to, 0))
		assert.Equal(t, geotest.World(19, 20, geotest.Floor), e.GetValidLocation(from, to, 0))
	})

	t.Run("enter obstructed cell", func(t *testing.T) {
		cfg := geo.DefaultConfig()
		cfg.AllowObstructedPathNodes = true
		e := geo.NewEngine(b.Store(t), cfg)
		assert.False(t, e.CanMoveToTarget(from, to, 0))
		assert.Equal(t, geotest.World(20, 20, geotest.Floor), e.GetValidLocation(from, to, 0))
	})

	t.Run("around the wall end", func(t *testing.T) {
		e := b.Engine(t)
		assert.True(t, e.CanMoveToTarget(geotest.World(10, 45, geotest.Floor), geotest.World(30, 45, geotest.Floor), 0))
	})
}

func TestCanMoveToTargetHeightStep(t *testing.T) {
	e := geotest.NewBuilder(geotest.Floor).Cell(15, 20, 200, geo.NSWEAll).Engine(t)

	low, high := geotest.World(10, 20, geotest.Floor), geotest.World(15, 20, 200)
	assert.False(t, e.CanMoveToTarget(low, high, 0), "climb of 104 exceeds the step limit")
	assert.Equal(t, geotest.World(14, 20, geotest.Floor), e.GetValidLocation(low, high, 0))

	assert.True(t, e.CanMoveToTarget(high, geotest.World(30, 20, geotest.Floor), 0), "dropping down is allowed")

	e = geotest.NewBuilder(geotest.Floor).Cell(15, 20, 128, geo.NSWEAll).Engine(t)
	assert.True(t, e.CanMoveToTarget(low, geotest.World(30, 20, geotest.Floor), 0))
}

func TestClippedHeightComesFromGeodata(t *testing.T) {
	// 100 is stored as 96 once the block turns complex.
	e := geotest.NewBuilder(100).WallX(20, 0, 40).Engine(t)
	from, to := geotest.World(10, 20, 100), geotest.World(30, 20, 100)

	got := e.GetValidLocation(from, to, 0)
	assert.Equal(t, e.GetHeight(got.X, got.Y, 100), got.Z)
	assert.Equal(t, int32(96), got.Z)
}

func TestCanMoveToTargetOtherFloor(t *testing.T) {
	e := geotest.NewBuilder(100).
		Layers(30, 20, geotest.Pack(300, geo.NSWEAll), geotest.Pack(100, geo.NSWEAll)).
		Engine(t)

	from, bridge := geotest.World(10, 20, 100), geotest.World(30, 20, 300)
	assert.False(t, e.CanMoveToTarget(from, bridge, 0))
	assert.Equal(t, from, e.GetValidLocation(from, bridge, 0))
	assert.True(t, e.CanMoveToTarget(from, geotest.World(30, 20, 100), 0))
}

func TestCanMoveToTargetDiagonalCorner(t *testing.T) {
	e := geotest.NewBuilder(100).
		Cell(11, 10, 100, geo.NSWEAll&^geo.NSWESouth).
		Engine(t)

	// Stepping south-east from (10,10) needs (11,10) open southwards.
	from, to := geotest.World(10, 10, 100), geotest.World(11, 11, 100)
	cfg := geo.DefaultConfig()
	cfg.AllowObstructedPathNodes = true
	e = geo.NewEngine(e.Store(), cfg)
	assert.False(t, e.CanMoveToTarget(from, to, 0))
	assert.True(t, e.CanMoveToTarget(from, geotest.World(10, 11, 100), 0))
}

func TestMoveOracles(t *testing.T) {
	doors := &stubDoors{}
	fences := &stubFences{}
	e := geotest.NewBuilder(100).Engine(t, geo.WithDoors(doors), geo.WithFences(fences))
	from, to := geotest.World(0, 0, 150), geotest.World(30, 0, 100)

	doors.block = true
	assert.False(t, e.CanMoveToTarget(from, to, 0))
	assert.False(t, doors.doubleFace)
	assert.Equal(t, geo.Point3D{X: from.X, Y: from.Y, Z: 100}, e.GetValidLocation(from, to, 0))

	doors.block = false
	fences.block = true
	assert.False(t, e.CanMoveToTarget(from, to, 0))
	assert.Equal(t, geo.Point3D{X: from.X, Y: from.Y, Z: 100}, e.GetValidLocation(from, to, 0))
}
