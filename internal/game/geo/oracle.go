package geo

// DoorChecker reports whether a closed door lies between two world points.
// doubleFace asks the door to block from both sides (line of sight);
// movement checks pass false.
type DoorChecker interface {
	DoorBetween(x, y, z, tx, ty, tz, instanceID int32, doubleFace bool) bool
}

// FenceChecker reports whether a geodata-enabled fence lies between two world points.
type FenceChecker interface {
	FenceBetween(x, y, z, tx, ty, tz, instanceID int32) bool
}

type noDoors struct{}

func (noDoors) DoorBetween(_, _, _, _, _, _, _ int32, _ bool) bool { return false }

type noFences struct{}

func (noFences) FenceBetween(_, _, _, _, _, _, _ int32) bool { return false }
