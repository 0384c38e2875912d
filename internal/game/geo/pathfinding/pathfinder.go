package pathfinding

import (
	"log/slog"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
)

// Default search tunables.
const (
	DefaultMaxPostfilterPasses = 3

	// arenaMargin is added to twice the longest axis distance when sizing
	// the arena for a search.
	arenaMargin = 64
)

// Geodata is the query engine surface the path search needs.
// *geo.Engine implements it.
type Geodata interface {
	NodeSource
	IsLoaded() bool
	HasGeoPos(worldX, worldY int32) bool
	GetHeight(worldX, worldY, worldZ int32) int32
	CanMoveToTarget(from, to geo.Point3D, instanceID int32) bool
}

// Config holds the path search tunables.
type Config struct {
	Enabled bool
	Buffers []Tier
	// AdvancedDiagonalStrategy expands diagonal neighbours during the search.
	// When off the search moves orthogonally and two-step staircases are
	// merged into diagonal segments while the path is rebuilt.
	AdvancedDiagonalStrategy bool
	// MaxPostfilterPasses bounds how often playable paths are smoothed.
	MaxPostfilterPasses int
	Weights             Weights
}

// DefaultConfig returns the stock L2J pathfinding configuration.
func DefaultConfig() Config {
	tiers, _ := ParseBuffers(DefaultBuffers)
	return Config{
		Enabled:                  true,
		Buffers:                  tiers,
		AdvancedDiagonalStrategy: true,
		MaxPostfilterPasses:      DefaultMaxPostfilterPasses,
		Weights:                  DefaultWeights(),
	}
}

// PathFinder answers route queries over geodata. Safe for concurrent use;
// every search runs on its own pooled NodeBuffer.
type PathFinder struct {
	geo     Geodata
	pool    *Pool
	cfg     Config
	enabled atomic.Bool
	stats   counters
}

// New creates a path finder. Pathfinding configured on while no geodata
// is loaded is switched off, since every search would walk blind.
func New(g Geodata, cfg Config) *PathFinder {
	if len(cfg.Buffers) == 0 {
		cfg.Buffers = DefaultConfig().Buffers
	}

	pf := &PathFinder{
		geo:  g,
		pool: NewPool(cfg.Buffers),
		cfg:  cfg,
	}
	pf.enabled.Store(cfg.Enabled)

	if cfg.Enabled && !g.IsLoaded() {
		slog.Warn("no geodata loaded, pathfinding disabled")
		pf.enabled.Store(false)
	}
	return pf
}

// Enabled reports whether FindPath runs searches.
func (pf *PathFinder) Enabled() bool { return pf.enabled.Load() }

// Disable turns pathfinding off for every caller.
func (pf *PathFinder) Disable() { pf.enabled.Store(false) }

// Pool returns the arena pool.
func (pf *PathFinder) Pool() *Pool { return pf.pool }

// Stats returns the search counters.
func (pf *PathFinder) Stats() Stats { return pf.stats.snapshot() }

// FindPath returns waypoints from one world position to another, starting
// with the origin snapped to its floor and ending at the target cell. A
// target in the origin cell yields just the snapped origin.
// Returns nil when there is no path: pathfinding disabled, an endpoint
// without geodata, no free arena, or a search that failed. Playable paths
// get repeated smoothing passes; others get a single one.
func (pf *PathFinder) FindPath(from, to geo.Point3D, instanceID int32, playable bool) []geo.Point3D {
	pf.stats.requests.Add(1)

	if !pf.Enabled() {
		pf.stats.disabled.Add(1)
		return nil
	}
	if !pf.geo.HasGeoPos(from.X, from.Y) || !pf.geo.HasGeoPos(to.X, to.Y) {
		pf.stats.noGeodata.Add(1)
		return nil
	}

	gx, gy := geo.GeoX(from.X), geo.GeoY(from.Y)
	gz := pf.geo.GetHeight(from.X, from.Y, from.Z)
	gtx, gty := geo.GeoX(to.X), geo.GeoY(to.Y)
	gtz := pf.geo.GetHeight(to.X, to.Y, to.Z)

	size := arenaMargin + 2*int(max(abs32(gx-gtx), abs32(gy-gty)))
	buf := pf.pool.Acquire(size)
	if buf == nil {
		pf.stats.poolExhausted.Add(1)
		slog.Debug("no free pathfinding buffer", "size", size)
		return nil
	}

	start := time.Now()
	path, ok := pf.search(buf, gx, gy, gz, gtx, gty, gtz)
	pf.stats.observe(start)

	if !ok {
		pf.stats.noPath.Add(1)
		return nil
	}

	path = pf.smooth(from, path, instanceID, playable)
	pf.stats.found.Add(1)
	return append([]geo.Point3D{{X: from.X, Y: from.Y, Z: gz}}, path...)
}

// search reports ok with an empty path when the goal is the start cell.
func (pf *PathFinder) search(buf *NodeBuffer, gx, gy, gz, gtx, gty, gtz int32) ([]geo.Point3D, bool) {
	defer buf.Release()

	opts := SearchOptions{Weights: pf.cfg.Weights, Diagonal: pf.cfg.AdvancedDiagonalStrategy}
	goal, ok := buf.Search(pf.geo, opts, gx, gy, gz, gtx, gty, gtz)
	if !ok {
		return nil, false
	}
	return constructPath(buf, goal, pf.cfg.AdvancedDiagonalStrategy), true
}

// constructPath walks parent links back from goal, keeping only the nodes
// where the direction of travel changes. The start node is not included.
func constructPath(buf *NodeBuffer, goal NodeRef, advancedDiagonal bool) []geo.Point3D {
	var path []geo.Point3D
	prevDX, prevDY := int32(math.MinInt32), int32(math.MinInt32)

	for ref := goal; ; {
		parentRef, ok := buf.Parent(ref)
		if !ok {
			break
		}
		node, _ := buf.Node(ref)
		parent, _ := buf.Node(parentRef)

		dx, dy := node.X-parent.X, node.Y-parent.Y
		if !advancedDiagonal {
			if gpRef, ok := buf.Parent(parentRef); ok {
				gp, _ := buf.Node(gpRef)
				if tx, ty := node.X-gp.X, node.Y-gp.Y; abs32(tx) == abs32(ty) {
					dx, dy = tx, ty
				}
			}
		}

		if dx != prevDX || dy != prevDY {
			prevDX, prevDY = dx, dy
			path = append(path, node.Location())
		}
		ref = parentRef
	}

	slices.Reverse(path)
	return path
}

// smooth drops waypoints that can be skipped by walking straight from the
// last kept point to the one after. The first pass always runs; playable
// paths repeat it up to MaxPostfilterPasses times while it still removes
// points.
func (pf *PathFinder) smooth(from geo.Point3D, path []geo.Point3D, instanceID int32, playable bool) []geo.Point3D {
	if len(path) < 3 || pf.cfg.MaxPostfilterPasses <= 0 {
		return path
	}

	for pass := 1; ; pass++ {
		removed := false
		cur := from
		out := make([]geo.Point3D, 0, len(path))

		for i := 0; i < len(path)-1; i++ {
			if pf.geo.CanMoveToTarget(cur, path[i+1], instanceID) {
				removed = true
				continue
			}
			out = append(out, path[i])
			cur = path[i]
		}
		path = append(out, path[len(path)-1])

		if !playable || !removed || len(path) <= 2 || pass >= pf.cfg.MaxPostfilterPasses {
			return path
		}
	}
}
