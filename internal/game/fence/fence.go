// Package fence keeps the fence table consulted by geodata sight and
// movement checks.
package fence

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// MaxZDiff is how far from its base Z a fence still obstructs.
const MaxZDiff = 100

// State is the visibility and collision state of a fence.
type State int32

const (
	Hidden State = iota
	Opened
	Closed
	ClosedHidden
)

var stateNames = [...]string{"HIDDEN", "OPENED", "CLOSED", "CLOSED_HIDDEN"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int32(s))
	}
	return stateNames[s]
}

// Blocks reports whether fences in this state obstruct geodata checks.
func (s State) Blocks() bool {
	return s == Closed || s == ClosedHidden
}

// ParseState parses a state name, case-insensitive.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if strings.EqualFold(n, name) {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidState, name)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Fence is an axis-aligned rectangle centered on (X, Y) at height Z.
// Height is the number of stacked fence layers shown to clients.
type Fence struct {
	ID         int32
	Name       string
	X, Y, Z    int32
	Width      int32
	Length     int32
	Height     int32
	InstanceID int32

	state atomic.Int32
}

// New creates a fence in the given state.
func New(id int32, x, y, z, width, length, height int32, state State) *Fence {
	f := &Fence{ID: id, X: x, Y: y, Z: z, Width: width, Length: length, Height: height}
	f.state.Store(int32(state))
	return f
}

// State returns the current fence state.
func (f *Fence) State() State { return State(f.state.Load()) }

// SetState changes the fence state.
func (f *Fence) SetState(s State) { f.state.Store(int32(s)) }

// Bounds returns the rectangle covered by the fence.
func (f *Fence) Bounds() (xMin, yMin, xMax, yMax int32) {
	return f.X - f.Width/2, f.Y - f.Length/2, f.X + f.Width/2, f.Y + f.Length/2
}

// Crosses reports whether segment (x,y,z)-(tx,ty) passes one of the fence
// edges with z inside the fence height band. A segment completely inside the
// rectangle never crosses it.
func (f *Fence) Crosses(x, y, z, tx, ty int32) bool {
	xMin, yMin, xMax, yMax := f.Bounds()

	switch {
	case x < xMin && tx < xMin, x > xMax && tx > xMax,
		y < yMin && ty < yMin, y > yMax && ty > yMax:
		return false
	case x > xMin && tx > xMin && x < xMax && tx < xMax &&
		y > yMin && ty > yMin && y < yMax && ty < yMax:
		return false
	}

	if !segmentsCross(x, y, tx, ty, xMin, yMin, xMax, yMin) &&
		!segmentsCross(x, y, tx, ty, xMax, yMin, xMax, yMax) &&
		!segmentsCross(x, y, tx, ty, xMax, yMax, xMin, yMax) &&
		!segmentsCross(x, y, tx, ty, xMin, yMax, xMin, yMin) {
		return false
	}
	return z > f.Z-MaxZDiff && z < f.Z+MaxZDiff
}

// segmentsCross reports whether segments p1-p2 and q1-q2 share a point.
func segmentsCross(p1x, p1y, p2x, p2y, q1x, q1y, q2x, q2y int32) bool {
	d1 := orient(q1x, q1y, q2x, q2y, p1x, p1y)
	d2 := orient(q1x, q1y, q2x, q2y, p2x, p2y)
	d3 := orient(p1x, p1y, p2x, p2y, q1x, q1y)
	d4 := orient(p1x, p1y, p2x, p2y, q2x, q2y)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(q1x, q1y, q2x, q2y, p1x, p1y)) ||
		(d2 == 0 && onSegment(q1x, q1y, q2x, q2y, p2x, p2y)) ||
		(d3 == 0 && onSegment(p1x, p1y, p2x, p2y, q1x, q1y)) ||
		(d4 == 0 && onSegment(p1x, p1y, p2x, p2y, q2x, q2y))
}

// orient is the sign of the cross product (b-a)x(c-a).
func orient(ax, ay, bx, by, cx, cy int32) int64 {
	return int64(bx-ax)*int64(cy-ay) - int64(by-ay)*int64(cx-ax)
}

// onSegment reports whether collinear point c lies within the box of a-b.
func onSegment(ax, ay, bx, by, cx, cy int32) bool {
	return cx >= min(ax, bx) && cx <= max(ax, bx) && cy >= min(ay, by) && cy <= max(ay, by)
}
