// Package door keeps the door table consulted by geodata sight and
// movement checks.
package door

import (
	"math"
	"slices"
	"sync/atomic"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
)

// Point is a door footprint corner in world coordinates.
type Point struct {
	X int32 `yaml:"x" json:"x"`
	Y int32 `yaml:"y" json:"y"`
}

// Door is a four-sided collision volume between ZMin and ZMax.
// Only Open and Dead change after load.
type Door struct {
	ID         int32
	Name       string
	Nodes      [4]Point
	ZMin, ZMax int32
	InstanceID int32
	// Collision false makes the door purely decorative.
	Collision bool

	open atomic.Bool
	dead atomic.Bool
}

// IsOpen reports whether the door currently lets actors through.
func (d *Door) IsOpen() bool { return d.open.Load() }

// IsDead reports whether the door was destroyed.
func (d *Door) IsDead() bool { return d.dead.Load() }

func (d *Door) blocks() bool {
	return d.Collision && !d.IsOpen() && !d.IsDead()
}

// Crosses reports whether segment (x,y,z)-(tx,ty,tz) passes through a face of
// the door inside its vertical range. With doubleFace set the segment has to
// cross two faces, so a point standing inside the footprint still sees out.
func (d *Door) Crosses(x, y, z, tx, ty, tz int32, doubleFace bool) bool {
	faces := 0
	for i := range d.Nodes {
		a, b := d.Nodes[i], d.Nodes[(i+1)%len(d.Nodes)]

		denom := int64(ty-y)*int64(a.X-b.X) - int64(tx-x)*int64(a.Y-b.Y)
		if denom == 0 {
			continue // parallel
		}

		// position along the face and along the segment
		along := float64(int64(b.X-a.X)*int64(y-a.Y)-int64(b.Y-a.Y)*int64(x-a.X)) / float64(denom)
		face := float64(int64(tx-x)*int64(y-a.Y)-int64(ty-y)*int64(x-a.X)) / float64(denom)
		if along < 0 || along > 1 || face < 0 || face > 1 {
			continue
		}

		iz := int32(math.Round(float64(z) + along*float64(tz-z)))
		if iz <= d.ZMin || iz >= d.ZMax {
			continue
		}
		faces++
		if !doubleFace || faces > 1 {
			return true
		}
	}
	return false
}

// bounds returns the footprint bounding box.
func (d *Door) bounds() (minX, minY, maxX, maxY int32) {
	minX, minY = math.MaxInt32, math.MaxInt32
	maxX, maxY = math.MinInt32, math.MinInt32
	for _, n := range d.Nodes {
		minX, maxX = min(minX, n.X), max(maxX, n.X)
		minY, maxY = min(minY, n.Y), max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY
}

// tileKey buckets doors by instance and geodata tile.
type tileKey struct {
	instance int32
	tile     int32
}

func tileOf(instanceID, worldX, worldY int32) tileKey {
	rx, ry := geo.RegionXY(geo.GeoX(worldX), geo.GeoY(worldY))
	return tileKey{instance: instanceID, tile: rx*geo.GeoRegionsY + ry}
}

// segmentTiles lists the distinct tiles under the corners of the bounding
// box of segment (x,y)-(tx,ty). A diagonal near a tile corner can pass a
// tile holding neither endpoint.
func segmentTiles(instanceID, x, y, tx, ty int32) []tileKey {
	keys := make([]tileKey, 0, 4)
	for _, c := range [][2]int32{{x, y}, {tx, ty}, {tx, y}, {x, ty}} {
		k := tileOf(instanceID, c[0], c[1])
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}
