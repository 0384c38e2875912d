// Package movement turns move requests into geodata-checked routes.
package movement

import (
	"fmt"
	"log/slog"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
)

// Movement limits.
const (
	MinZCoordinate = -20000
	MaxZCoordinate = 20000

	MaxMoveDistance = 9900
	MinMoveDistance = 17

	maxMoveDistanceSquared = MaxMoveDistance * MaxMoveDistance
	minMoveDistanceSquared = MinMoveDistance * MinMoveDistance

	// DesyncWarningSquared is the client/server position gap (squared) that
	// triggers a position correction.
	DesyncWarningSquared = 500 * 500
)

// Geodata is the query engine surface the validator needs.
// *geo.Engine implements it.
type Geodata interface {
	IsLoaded() bool
	GetHeight(worldX, worldY, worldZ int32) int32
	CanMoveToTarget(from, to geo.Point3D, instanceID int32) bool
	GetValidLocation(from, to geo.Point3D, instanceID int32) geo.Point3D
}

// PathFinder plans detours. *pathfinding.PathFinder implements it.
type PathFinder interface {
	FindPath(from, to geo.Point3D, instanceID int32, playable bool) []geo.Point3D
}

// Kind tells how a move request was resolved.
type Kind int

const (
	// Direct moves straight to the target.
	Direct Kind = iota
	// Routed follows Result.Path.
	Routed
	// Clipped stops at the farthest reachable point toward the target.
	Clipped
	// Stay means nothing toward the target is reachable.
	Stay
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Routed:
		return "routed"
	case Clipped:
		return "clipped"
	case Stay:
		return "stay"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of Resolve.
type Result struct {
	Kind Kind
	// Target is the final destination with geodata-corrected Z.
	Target geo.Point3D
	// Path holds the waypoints for Routed results, start first.
	Path []geo.Point3D
}

// Validator checks and routes actor movement. Safe for concurrent use.
type Validator struct {
	geo   Geodata
	paths PathFinder
}

// NewValidator creates a validator. paths may be nil to disable detours.
func NewValidator(g Geodata, paths PathFinder) *Validator {
	return &Validator{geo: g, paths: paths}
}

// ValidateMove rejects destinations that no legitimate client sends:
// heights outside the world band, teleport-sized jumps and sub-cell jitter.
// Zero-distance moves are allowed.
func ValidateMove(from, to geo.Point3D) error {
	if to.Z < MinZCoordinate || to.Z > MaxZCoordinate {
		return fmt.Errorf("%w: %d (allowed %d..%d)", ErrZOutOfRange, to.Z, MinZCoordinate, MaxZCoordinate)
	}

	distSq := distanceSquared2D(from, to)
	if distSq > maxMoveDistanceSquared {
		return fmt.Errorf("%w: %d (max %d)", ErrTooFar, distSq, int64(maxMoveDistanceSquared))
	}
	if distSq > 0 && distSq < minMoveDistanceSquared {
		return fmt.Errorf("%w: %d (min %d)", ErrTooClose, distSq, int64(minMoveDistanceSquared))
	}
	return nil
}

// Resolve validates a move and decides how the actor gets there: straight,
// along a planned path, clipped at the first obstacle, or not at all.
func (v *Validator) Resolve(from, to geo.Point3D, instanceID int32, playable bool) (Result, error) {
	if err := ValidateMove(from, to); err != nil {
		return Result{}, err
	}

	if v.geo == nil || !v.geo.IsLoaded() {
		return Result{Kind: Direct, Target: to}, nil
	}

	to.Z = v.geo.GetHeight(to.X, to.Y, to.Z)
	if v.geo.CanMoveToTarget(from, to, instanceID) {
		return Result{Kind: Direct, Target: to}, nil
	}

	if v.paths != nil {
		if path := v.paths.FindPath(from, to, instanceID, playable); len(path) > 0 {
			return Result{Kind: Routed, Target: path[len(path)-1], Path: path}, nil
		}
	}

	clip := v.geo.GetValidLocation(from, to, instanceID)
	if clip.X == from.X && clip.Y == from.Y {
		slog.Debug("move unreachable", "from", from, "to", to, "instance", instanceID)
		return Result{Kind: Stay, Target: clip}, nil
	}
	return Result{Kind: Clipped, Target: clip}, nil
}

// CheckDesync compares a client-reported position with the server position.
// needsCorrection is set when the 2D gap exceeds DesyncWarningSquared.
func CheckDesync(server, client geo.Point3D) (needsCorrection bool, diffSquared int64) {
	diffSquared = distanceSquared2D(server, client)
	return diffSquared > DesyncWarningSquared, diffSquared
}

func distanceSquared2D(a, b geo.Point3D) int64 {
	dx := int64(b.X) - int64(a.X)
	dy := int64(b.Y) - int64(a.Y)
	return dx*dx + dy*dy
}
