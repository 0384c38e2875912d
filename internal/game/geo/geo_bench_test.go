package geo_test

import (
	"testing"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/geotest"
)

func BenchmarkCanSeeTarget(b *testing.B) {
	e := geotest.NewBuilder(100).WallX(200, 0, 100).Engine(b)
	from, to := geotest.World(10, 50, 100), geotest.World(190, 120, 100)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		e.CanSeeTarget(from, to, 0)
	}
}

func BenchmarkCanMoveToTarget(b *testing.B) {
	e := geotest.NewBuilder(100).Engine(b)
	from, to := geotest.World(10, 50, 100), geotest.World(190, 120, 100)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		e.CanMoveToTarget(from, to, 0)
	}
}

func BenchmarkGetHeight(b *testing.B) {
	e := geotest.NewBuilder(0).
		Layers(4, 4, geotest.Pack(400, geo.NSWEAll), geotest.Pack(0, geo.NSWEAll)).
		Engine(b)
	p := geotest.World(4, 4, 350)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		e.GetHeight(p.X, p.Y, p.Z)
	}
}
