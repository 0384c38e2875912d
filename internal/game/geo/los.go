package geo

import "fmt"

// CanSeeBetween checks line of sight between two points that may live in
// different instances. Points in different instances never see each other.
func (e *Engine) CanSeeBetween(from Point3D, fromInstance int32, to Point3D, toInstance int32) bool {
	if fromInstance != toInstance {
		return false
	}
	return e.CanSeeTarget(from, to, fromInstance)
}

// CanSeeTarget checks line of sight between two world positions.
// Doors and fences are consulted first. The segment is then traced with a
// 3D Bresenham walk from the higher endpoint; a cell blocks sight when its
// height rises more than MaxSeeOverHeight above the reference height. Near
// the origin the reference is the origin's floor, further out it is the
// traced line itself.
func (e *Engine) CanSeeTarget(from, to Point3D, instanceID int32) bool {
	if e.doors.DoorBetween(from.X, from.Y, from.Z, to.X, to.Y, to.Z, instanceID, true) {
		return false
	}
	if e.fences.FenceBetween(from.X, from.Y, from.Z, to.X, to.Y, to.Z, instanceID) {
		return false
	}

	geoX, geoY := GeoX(from.X), GeoY(from.Y)
	tGeoX, tGeoY := GeoX(to.X), GeoY(to.Y)

	nearestFromZ := e.NearestZ(geoX, geoY, from.Z)
	nearestToZ := e.NearestZ(tGeoX, tGeoY, to.Z)

	if geoX == tGeoX && geoY == tGeoY {
		if !e.HasGeo(tGeoX, tGeoY) {
			return true
		}
		return nearestFromZ == nearestToZ
	}

	if nearestToZ > nearestFromZ {
		geoX, tGeoX = tGeoX, geoX
		geoY, tGeoY = tGeoY, geoY
		nearestFromZ, nearestToZ = nearestToZ, nearestFromZ
	}

	it := NewLineIterator3D(geoX, geoY, nearestFromZ, tGeoX, tGeoY, nearestToZ)
	it.Next()

	prevX, prevY := it.X(), it.Y()
	prevGeoZ := it.Z()
	var traced int32

	for it.Next() {
		curX, curY := it.X(), it.Y()
		if curX == prevX && curY == prevY {
			continue
		}

		beeZ := it.Z()
		curGeoZ := prevGeoZ

		if e.HasGeo(curX, curY) {
			nswe := ComputeNSWE(prevX, prevY, curX, curY)
			curGeoZ = e.losGeoZ(prevX, prevY, prevGeoZ, curX, curY, nswe)

			maxHeight := beeZ + e.cfg.MaxSeeOverHeight
			if traced < e.cfg.ElevatedSeeOverDistance {
				maxHeight = nearestFromZ + e.cfg.MaxSeeOverHeight
			}

			if curGeoZ > maxHeight {
				return false
			}
			if !e.losCornerClear(prevX, prevY, prevGeoZ, beeZ, nswe, maxHeight) {
				return false
			}
		}

		prevX, prevY = curX, curY
		prevGeoZ = curGeoZ
		traced++
	}

	return true
}

// losCornerClear checks the two cells bracketing a diagonal sight step.
// Both must stay under maxHeight and not rise above their own floor at the
// traced height. Orthogonal steps always pass.
func (e *Engine) losCornerClear(prevX, prevY, prevGeoZ, beeZ int32, nswe byte, maxHeight int32) bool {
	var ax, ay, bx, by int32 // bracketing cells
	var aDir, bDir byte

	switch {
	case nswe&NSWENorthEast == NSWENorthEast:
		ax, ay, aDir = prevX, prevY-1, NSWEEast
		bx, by, bDir = prevX+1, prevY, NSWENorth
	case nswe&NSWENorthWest == NSWENorthWest:
		ax, ay, aDir = prevX, prevY-1, NSWEWest
		bx, by, bDir = prevX-1, prevY, NSWENorth
	case nswe&NSWESouthEast == NSWESouthEast:
		ax, ay, aDir = prevX, prevY+1, NSWEEast
		bx, by, bDir = prevX+1, prevY, NSWESouth
	case nswe&NSWESouthWest == NSWESouthWest:
		ax, ay, aDir = prevX, prevY+1, NSWEWest
		bx, by, bDir = prevX-1, prevY, NSWESouth
	default:
		return true
	}

	aZ := e.losGeoZ(prevX, prevY, prevGeoZ, ax, ay, aDir)
	bZ := e.losGeoZ(prevX, prevY, prevGeoZ, bx, by, bDir)
	return aZ <= maxHeight && bZ <= maxHeight &&
		aZ <= e.NearestZ(ax, ay, beeZ) && bZ <= e.NearestZ(bx, by, beeZ)
}

// losGeoZ resolves the height sight meets entering (curX, curY) from the
// previous cell: the nearest floor when the step is open, otherwise the
// next layer up (the top of whatever blocks it).
// Panics when nswe holds two opposite directions.
func (e *Engine) losGeoZ(prevX, prevY, prevGeoZ, curX, curY int32, nswe byte) int32 {
	if nswe&(NSWENorth|NSWESouth) == NSWENorth|NSWESouth ||
		nswe&(NSWEWest|NSWEEast) == NSWEWest|NSWEEast {
		panic(fmt.Sprintf("geo: opposite directions in sight query: nswe=0x%X at (%d,%d)", nswe, prevX, prevY))
	}

	if e.CheckNearestNSWEAntiCornerCut(prevX, prevY, prevGeoZ, nswe) {
		return e.NearestZ(curX, curY, prevGeoZ)
	}
	return e.NextHigherZ(curX, curY, prevGeoZ)
}
