package geo

// CanMoveToTarget reports whether an actor can walk a straight line from
// one world position to another. Doors and fences are checked first, then
// every cell step along the 2D line must climb no more than MaxHeightStep
// and pass the anti-corner-cut direction check. The walk must end on the
// target's layer.
func (e *Engine) CanMoveToTarget(from, to Point3D, instanceID int32) bool {
	tr := e.traceMove(from, to, instanceID)
	if tr.obstructed || tr.blocked {
		return false
	}
	return !e.HasGeo(tr.lastX, tr.lastY) || tr.lastZ == tr.toZ
}

// GetValidLocation returns the farthest point reachable walking straight
// from one world position toward another. When a door or fence is in the way
// the origin is returned.
func (e *Engine) GetValidLocation(from, to Point3D, instanceID int32) Point3D {
	tr := e.traceMove(from, to, instanceID)
	switch {
	case tr.obstructed:
		return Point3D{X: from.X, Y: from.Y, Z: e.GetHeight(from.X, from.Y, tr.fromZ)}
	case tr.blocked:
		return Point3D{X: WorldX(tr.lastX), Y: WorldY(tr.lastY), Z: tr.lastZ}
	case e.HasGeo(tr.lastX, tr.lastY) && tr.lastZ != tr.toZ:
		return Point3D{X: from.X, Y: from.Y, Z: tr.fromZ}
	default:
		return Point3D{X: to.X, Y: to.Y, Z: tr.toZ}
	}
}

// moveTrace is the outcome of walking a straight move cell by cell.
type moveTrace struct {
	fromZ, toZ int32 // nearest floors at both ends
	obstructed bool  // door or fence
	blocked    bool  // terrain stopped the walk at (lastX, lastY)
	lastX      int32
	lastY      int32
	lastZ      int32
}

func (e *Engine) traceMove(from, to Point3D, instanceID int32) moveTrace {
	geoX, geoY := GeoX(from.X), GeoY(from.Y)
	tGeoX, tGeoY := GeoX(to.X), GeoY(to.Y)

	tr := moveTrace{
		fromZ: e.NearestZ(geoX, geoY, from.Z),
		toZ:   e.NearestZ(tGeoX, tGeoY, to.Z),
		lastX: geoX,
		lastY: geoY,
	}
	tr.lastZ = tr.fromZ

	if e.doors.DoorBetween(from.X, from.Y, tr.fromZ, to.X, to.Y, tr.toZ, instanceID, false) ||
		e.fences.FenceBetween(from.X, from.Y, tr.fromZ, to.X, to.Y, tr.toZ, instanceID) {
		tr.obstructed = true
		return tr
	}

	it := NewLineIterator2D(geoX, geoY, tGeoX, tGeoY)
	it.Next()

	for it.Next() {
		curX, curY := it.X(), it.Y()
		curZ := e.NearestZ(curX, curY, tr.lastZ)

		if curZ-tr.lastZ > e.cfg.MaxHeightStep {
			tr.blocked = true
			return tr
		}

		if e.HasGeo(tr.lastX, tr.lastY) {
			if !e.cfg.AllowObstructedPathNodes && !e.CheckNearestNSWE(curX, curY, curZ, NSWEAll) {
				tr.blocked = true
				return tr
			}
			nswe := ComputeNSWE(tr.lastX, tr.lastY, curX, curY)
			if !e.CheckNearestNSWEAntiCornerCut(tr.lastX, tr.lastY, tr.lastZ, nswe) {
				tr.blocked = true
				return tr
			}
		}

		tr.lastX, tr.lastY, tr.lastZ = curX, curY, curZ
	}
	return tr
}
