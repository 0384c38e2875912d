package pathfinding

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
)

// Search limits.
const (
	// MaxIterations caps node expansions per search.
	MaxIterations = 3500
	// maxInsertScan caps the open chain walk of a single insertion.
	maxInsertScan = MaxIterations * 4

	// goalZTolerance is how far the reached floor may be from the target height.
	goalZTolerance = 64
	// maxFlatStep is the height change above which a step counts as rough terrain.
	maxFlatStep = 16
)

var insertScanWarn = rate.NewLimiter(rate.Every(10*time.Second), 1)

// NodeSource resolves the floor and passability of a geo cell.
type NodeSource interface {
	NearestZ(geoX, geoY, worldZ int32) int32
	NearestNSWE(geoX, geoY, worldZ int32) byte
}

// Weights are the terrain penalties added to a node's cost.
type Weights struct {
	Low      float32 // orthogonal step on open ground
	Medium   float32 // next to rough terrain
	High     float32 // rough terrain itself
	Diagonal float32 // diagonal step on open ground
}

// DefaultWeights returns the stock L2J weights.
func DefaultWeights() Weights {
	return Weights{Low: 0.5, Medium: 2, High: 3, Diagonal: 0.707}
}

// SearchOptions tune one NodeBuffer search.
type SearchOptions struct {
	Weights  Weights
	Diagonal bool
}

// NodeBuffer is a square arena of search slots reused across searches.
// A buffer serves one search at a time: TryAcquire, Search, read the
// result, Release.
type NodeBuffer struct {
	mu   sync.Mutex
	busy atomic.Bool

	size    int32
	slots   []GeoNode
	touched []int32
	gen     uint32

	src  NodeSource
	opts SearchOptions

	baseX, baseY              int32
	targetX, targetY, targetZ int32
	current                   int32
}

// NewNodeBuffer creates an arena covering size x size cells.
func NewNodeBuffer(size int) *NodeBuffer {
	b := &NodeBuffer{
		size:  int32(size),
		slots: make([]GeoNode, size*size),
	}
	for i := range b.slots {
		b.slots[i].reset()
	}
	return b
}

// Size returns the arena edge length in cells.
func (b *NodeBuffer) Size() int { return int(b.size) }

// TryAcquire locks the buffer without blocking.
func (b *NodeBuffer) TryAcquire() bool {
	if !b.mu.TryLock() {
		return false
	}
	b.busy.Store(true)
	return true
}

// InUse reports whether a search currently holds the buffer.
func (b *NodeBuffer) InUse() bool { return b.busy.Load() }

// Release clears every slot touched by the last search and unlocks the buffer.
func (b *NodeBuffer) Release() {
	for _, idx := range b.touched {
		b.slots[idx].reset()
	}
	b.touched = b.touched[:0]
	b.src = nil
	b.current = noNode

	b.busy.Store(false)
	b.mu.Unlock()
}

// Search runs a best-first expansion from geo cell (x, y) at floor z toward
// (tx, ty, tz). The arena is centered on the midpoint of the two cells;
// cells outside it are not explored. Returns the goal node, or false when
// the open chain runs dry or MaxIterations is reached.
// The buffer must be acquired.
func (b *NodeBuffer) Search(src NodeSource, opts SearchOptions, x, y, z, tx, ty, tz int32) (NodeRef, bool) {
	b.gen++
	if b.gen == 0 {
		b.gen = 1
	}
	b.src = src
	b.opts = opts

	b.baseX = x + (tx-x-b.size)/2
	b.baseY = y + (ty-y-b.size)/2
	b.targetX, b.targetY, b.targetZ = tx, ty, tz

	b.current = b.node(x, y, z)
	if b.current == noNode {
		return NodeRef{}, false
	}
	start := &b.slots[b.current]
	start.cost = b.cost(x, y, start.Z, opts.Weights.High)
	start.state = nodeOpen

	for range MaxIterations {
		cur := &b.slots[b.current]
		if cur.X == b.targetX && cur.Y == b.targetY && abs32(cur.Z-b.targetZ) < goalZTolerance {
			return NodeRef{index: b.current, gen: b.gen}, true
		}

		b.expand()
		cur.state = nodeClosed

		if cur.next == noNode {
			return NodeRef{}, false
		}
		b.current = cur.next
	}
	return NodeRef{}, false
}

// Node resolves a ref of the running search.
func (b *NodeBuffer) Node(ref NodeRef) (*GeoNode, bool) {
	if ref.gen == 0 || ref.gen != b.gen || ref.index < 0 || int(ref.index) >= len(b.slots) {
		return nil, false
	}
	n := &b.slots[ref.index]
	if n.gen != ref.gen {
		return nil, false
	}
	return n, true
}

// Parent returns the node ref was reached from.
func (b *NodeBuffer) Parent(ref NodeRef) (NodeRef, bool) {
	n, ok := b.Node(ref)
	if !ok || n.parent == noNode {
		return NodeRef{}, false
	}
	return NodeRef{index: n.parent, gen: ref.gen}, true
}

// expand adds the neighbours of the current node to the open chain.
// Diagonals need both bracketing orthogonal neighbours open toward them.
func (b *NodeBuffer) expand() {
	cur := &b.slots[b.current]
	if cur.canGoNone() {
		return
	}

	x, y, z := cur.X, cur.Y, cur.Z
	nodeE, nodeS, nodeW, nodeN := noNode, noNode, noNode, noNode

	if cur.canGo(geo.NSWEEast) {
		nodeE = b.add(x+1, y, z, false)
	}
	if cur.canGo(geo.NSWESouth) {
		nodeS = b.add(x, y+1, z, false)
	}
	if cur.canGo(geo.NSWEWest) {
		nodeW = b.add(x-1, y, z, false)
	}
	if cur.canGo(geo.NSWENorth) {
		nodeN = b.add(x, y-1, z, false)
	}

	if !b.opts.Diagonal {
		return
	}

	if b.opens(nodeE, geo.NSWESouth) && b.opens(nodeS, geo.NSWEEast) {
		b.add(x+1, y+1, z, true)
	}
	if b.opens(nodeW, geo.NSWESouth) && b.opens(nodeS, geo.NSWEWest) {
		b.add(x-1, y+1, z, true)
	}
	if b.opens(nodeE, geo.NSWENorth) && b.opens(nodeN, geo.NSWEEast) {
		b.add(x+1, y-1, z, true)
	}
	if b.opens(nodeW, geo.NSWENorth) && b.opens(nodeN, geo.NSWEWest) {
		b.add(x-1, y-1, z, true)
	}
}

func (b *NodeBuffer) opens(idx int32, dir byte) bool {
	return idx != noNode && b.slots[idx].canGo(dir)
}

// add reaches cell (x, y) from the current node. A cell reached before is
// returned as is; a new one is costed and inserted into the open chain
// behind every node of lower or equal cost.
func (b *NodeBuffer) add(x, y, z int32, diagonal bool) int32 {
	idx := b.node(x, y, z)
	if idx == noNode {
		return noNode
	}
	n := &b.slots[idx]
	if n.state != nodeUnvisited {
		return idx
	}

	w := b.opts.Weights
	weight := w.Low
	if diagonal {
		weight = w.Diagonal
	}

	cur := &b.slots[b.current]
	switch {
	case !n.canGoAll() || abs32(n.Z-cur.Z) > maxFlatStep:
		weight = w.High
	case b.rough(x+1, y, n.Z), b.rough(x-1, y, n.Z), b.rough(x, y+1, n.Z), b.rough(x, y-1, n.Z):
		weight = w.Medium
	}

	n.parent = b.current
	n.cost = b.cost(x, y, n.Z, weight)
	n.state = nodeOpen

	at := b.current
	scanned := 0
	for b.slots[at].next != noNode && scanned < maxInsertScan {
		scanned++
		next := b.slots[at].next
		if b.slots[next].cost > n.cost {
			n.next = next
			break
		}
		at = next
	}
	if scanned == maxInsertScan && insertScanWarn.Allow() {
		slog.Warn("pathfinding open chain insertion too long",
			"cost", n.cost, "x", x, "y", y, "scanned", scanned)
	}
	b.slots[at].next = idx

	return idx
}

// rough reports whether (x, y) is outside the arena, not fully open, or
// off by more than maxFlatStep from z.
func (b *NodeBuffer) rough(x, y, z int32) bool {
	idx := b.node(x, y, z)
	if idx == noNode {
		return true
	}
	n := &b.slots[idx]
	return !n.canGoAll() || abs32(n.Z-z) > maxFlatStep
}

// node returns the slot for cell (x, y), claiming it for this search on first
// touch. Returns noNode outside the arena.
func (b *NodeBuffer) node(x, y, z int32) int32 {
	ax := x - b.baseX
	ay := y - b.baseY
	if ax < 0 || ax >= b.size || ay < 0 || ay >= b.size {
		return noNode
	}

	idx := ax*b.size + ay
	n := &b.slots[idx]
	if n.gen != b.gen {
		n.reset()
		n.gen = b.gen
		n.X, n.Y = x, y
		n.Z = b.src.NearestZ(x, y, z)
		n.nswe = b.src.NearestNSWE(x, y, z)
		b.touched = append(b.touched, idx)
	}
	return idx
}

// cost is the straight distance to the target, with vertical distance
// scaled down by 16, plus weight once the distance exceeds it.
func (b *NodeBuffer) cost(x, y, z int32, weight float32) float32 {
	dx := float64(x - b.targetX)
	dy := float64(y - b.targetY)
	dz := float64(z - b.targetZ)

	result := math.Sqrt(dx*dx + dy*dy + dz*dz/256)
	if result > float64(weight) {
		result += float64(weight)
	}
	if result > math.MaxFloat32 {
		result = math.MaxFloat32
	}
	return float32(result)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
