package pathfinding

import "github.com/itzfoxbrz/KamikaZL2/internal/game/geo"

// noNode terminates parent links and the open chain.
const noNode int32 = -1

// nodeState tracks a slot through one search: unvisited, open (costed and
// linked into the open chain) or closed (expanded).
type nodeState uint8

const (
	nodeUnvisited nodeState = iota
	nodeOpen
	nodeClosed
)

// GeoNode is one search slot of a NodeBuffer: a geo cell resolved to the
// floor nearest the height it was reached at.
type GeoNode struct {
	X, Y int32 // geo cell
	Z    int32 // floor height
	nswe byte

	cost   float32
	parent int32 // slot index
	next   int32 // slot index in the open chain
	state  nodeState
	gen    uint32 // search that owns the slot; 0 when free
}

func (n *GeoNode) canGo(dir byte) bool { return n.nswe&dir != 0 }
func (n *GeoNode) canGoAll() bool      { return n.nswe == geo.NSWEAll }
func (n *GeoNode) canGoNone() bool     { return n.nswe == 0 }

// Cost returns the search cost; meaningful only once the node was reached.
func (n *GeoNode) Cost() float32 { return n.cost }

// Location returns the node as a world position at the cell center.
func (n *GeoNode) Location() geo.Point3D {
	return geo.Point3D{X: geo.WorldX(n.X), Y: geo.WorldY(n.Y), Z: n.Z}
}

func (n *GeoNode) reset() {
	n.cost = 0
	n.parent = noNode
	n.next = noNode
	n.state = nodeUnvisited
	n.gen = 0
}

// NodeRef addresses a slot of one particular search. A ref taken before
// Release no longer resolves afterwards.
type NodeRef struct {
	index int32
	gen   uint32
}
