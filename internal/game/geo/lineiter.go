package geo

// LineIterator3D walks a 3D Bresenham line for LOS checks.
// X and Y are geo cells, Z is in world units, so a steep sight line yields
// runs of points sharing one cell; callers skip those duplicates.
type LineIterator3D struct {
	cur, dst [3]int32
	delta    [3]int32
	step     [3]int32
	errs     [3]int32
	major    int // axis with the largest delta
	started  bool
}

// NewLineIterator3D creates a 3D Bresenham line iterator.
func NewLineIterator3D(sx, sy, sz, ex, ey, ez int32) *LineIterator3D {
	it := &LineIterator3D{
		cur: [3]int32{sx, sy, sz},
		dst: [3]int32{ex, ey, ez},
	}

	for axis := range 3 {
		it.delta[axis] = abs32(it.dst[axis] - it.cur[axis])
		it.step[axis] = 1
		if it.cur[axis] > it.dst[axis] {
			it.step[axis] = -1
		}
		if it.delta[axis] > it.delta[it.major] {
			it.major = axis
		}
	}

	half := it.delta[it.major] / 2
	it.errs = [3]int32{half, half, half}
	return it
}

// Next advances the iterator to the next point.
// The first call yields the start point; returns false after the target.
func (it *LineIterator3D) Next() bool {
	if !it.started {
		it.started = true
		return true
	}

	if it.cur == it.dst {
		return false
	}

	major := it.delta[it.major]
	it.cur[it.major] += it.step[it.major]
	for axis := range 3 {
		if axis == it.major {
			continue
		}
		it.errs[axis] += it.delta[axis]
		if it.errs[axis] >= major {
			it.cur[axis] += it.step[axis]
			it.errs[axis] -= major
		}
	}
	return true
}

// X returns current X position.
func (it *LineIterator3D) X() int32 { return it.cur[0] }

// Y returns current Y position.
func (it *LineIterator3D) Y() int32 { return it.cur[1] }

// Z returns current Z position.
func (it *LineIterator3D) Z() int32 { return it.cur[2] }

// LineIterator2D walks the geo cells of a 2D Bresenham line for movement
// checks. Both axes may advance in one step, producing a diagonal move that
// the caller resolves with the anti-corner-cut rule.
type LineIterator2D struct {
	currentX, currentY int32
	targetX, targetY   int32
	deltaX, deltaY     int32 // deltaY is stored negated
	stepX, stepY       int32
	err                int32
	started            bool
}

// NewLineIterator2D creates a 2D Bresenham line iterator.
func NewLineIterator2D(sx, sy, ex, ey int32) *LineIterator2D {
	it := &LineIterator2D{
		currentX: sx, currentY: sy,
		targetX: ex, targetY: ey,
		deltaX: abs32(ex - sx),
		deltaY: -abs32(ey - sy),
		stepX:  1,
		stepY:  1,
	}
	if sx > ex {
		it.stepX = -1
	}
	if sy > ey {
		it.stepY = -1
	}
	it.err = it.deltaX + it.deltaY
	return it
}

// Next advances the iterator to the next cell.
// The first call yields the start cell; returns false after the target.
func (it *LineIterator2D) Next() bool {
	if !it.started {
		it.started = true
		return true
	}

	if it.currentX == it.targetX && it.currentY == it.targetY {
		return false
	}

	e2 := 2 * it.err
	if e2 > it.deltaY {
		it.err += it.deltaY
		it.currentX += it.stepX
	}
	if e2 < it.deltaX {
		it.err += it.deltaX
		it.currentY += it.stepY
	}
	return true
}

// X returns current X position.
func (it *LineIterator2D) X() int32 { return it.currentX }

// Y returns current Y position.
func (it *LineIterator2D) Y() int32 { return it.currentY }
