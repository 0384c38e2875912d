package geo

// Config holds the query engine tunables.
type Config struct {
	// MaxSeeOverHeight is how far above the traced line an obstacle may rise
	// before it blocks sight.
	MaxSeeOverHeight int32
	// ElevatedSeeOverDistance is the number of traced cells near the origin
	// measured against the origin height instead of the traced line.
	ElevatedSeeOverDistance int32
	// MaxHeightStep is the largest climb allowed between two adjacent cells.
	MaxHeightStep int32
	// SpawnZDeltaLimit bounds how far GetSpawnHeight may move a spawn.
	SpawnZDeltaLimit int32
	// AllowObstructedPathNodes lets moves enter cells that are not open in
	// all four directions. Such cells are rejected by default.
	AllowObstructedPathNodes bool
}

// DefaultConfig returns the stock L2J tunables.
func DefaultConfig() Config {
	return Config{
		MaxSeeOverHeight:        DefaultMaxSeeOverHeight,
		ElevatedSeeOverDistance: DefaultElevatedSeeOverDistance,
		MaxHeightStep:           DefaultMaxHeightStep,
		SpawnZDeltaLimit:        DefaultSpawnZDeltaLimit,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithDoors installs the door obstruction oracle.
func WithDoors(d DoorChecker) Option {
	return func(e *Engine) {
		if d != nil {
			e.doors = d
		}
	}
}

// WithFences installs the fence obstruction oracle.
func WithFences(f FenceChecker) Option {
	return func(e *Engine) {
		if f != nil {
			e.fences = f
		}
	}
}

// Engine answers height, passability, sight and movement queries against a Store.
// Safe for concurrent use once the store is loaded.
type Engine struct {
	store  *Store
	cfg    Config
	doors  DoorChecker
	fences FenceChecker
}

// NewEngine creates a query engine over store.
// Zero-valued tunables in cfg fall back to their defaults.
func NewEngine(store *Store, cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.MaxSeeOverHeight <= 0 {
		cfg.MaxSeeOverHeight = def.MaxSeeOverHeight
	}
	if cfg.ElevatedSeeOverDistance <= 0 {
		cfg.ElevatedSeeOverDistance = def.ElevatedSeeOverDistance
	}
	if cfg.MaxHeightStep <= 0 {
		cfg.MaxHeightStep = def.MaxHeightStep
	}
	if cfg.SpawnZDeltaLimit <= 0 {
		cfg.SpawnZDeltaLimit = def.SpawnZDeltaLimit
	}

	e := &Engine{
		store:  store,
		cfg:    cfg,
		doors:  noDoors{},
		fences: noFences{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying region store.
func (e *Engine) Store() *Store { return e.store }

// Config returns the effective tunables.
func (e *Engine) Config() Config { return e.cfg }

// IsLoaded reports whether at least one region holds geodata.
func (e *Engine) IsLoaded() bool {
	return e.store.LoadedCount() > 0
}

// HasGeo reports whether geo cell (geoX, geoY) is covered by geodata.
func (e *Engine) HasGeo(geoX, geoY int32) bool {
	return e.store.Region(geoX, geoY).HasGeo()
}

// HasGeoPos reports whether world position (worldX, worldY) is covered by geodata.
func (e *Engine) HasGeoPos(worldX, worldY int32) bool {
	return e.HasGeo(GeoX(worldX), GeoY(worldY))
}

// NearestZ returns the layer of geo cell (geoX, geoY) closest to worldZ.
func (e *Engine) NearestZ(geoX, geoY, worldZ int32) int32 {
	return e.store.Region(geoX, geoY).NearestZ(geoX, geoY, worldZ)
}

// NextLowerZ returns the highest layer at or below worldZ, or worldZ if none.
func (e *Engine) NextLowerZ(geoX, geoY, worldZ int32) int32 {
	return e.store.Region(geoX, geoY).NextLowerZ(geoX, geoY, worldZ)
}

// NextHigherZ returns the lowest layer at or above worldZ, or worldZ if none.
func (e *Engine) NextHigherZ(geoX, geoY, worldZ int32) int32 {
	return e.store.Region(geoX, geoY).NextHigherZ(geoX, geoY, worldZ)
}

// NearestNSWE returns the passability mask of the layer closest to worldZ.
func (e *Engine) NearestNSWE(geoX, geoY, worldZ int32) byte {
	return e.store.Region(geoX, geoY).NearestNSWE(geoX, geoY, worldZ)
}

// CheckNearestNSWE reports whether every direction in nswe is open on the
// layer closest to worldZ.
func (e *Engine) CheckNearestNSWE(geoX, geoY, worldZ int32, nswe byte) bool {
	return e.NearestNSWE(geoX, geoY, worldZ)&nswe == nswe
}

// CheckNearestNSWEAntiCornerCut is CheckNearestNSWE that, for a diagonal
// direction, also requires both bracketing orthogonal cells to be open
// toward the diagonal.
func (e *Engine) CheckNearestNSWEAntiCornerCut(geoX, geoY, worldZ int32, nswe byte) bool {
	ok := true
	switch {
	case nswe&NSWENorthEast == NSWENorthEast:
		ok = e.CheckNearestNSWE(geoX, geoY-1, worldZ, NSWEEast) &&
			e.CheckNearestNSWE(geoX+1, geoY, worldZ, NSWENorth)
	case nswe&NSWENorthWest == NSWENorthWest:
		ok = e.CheckNearestNSWE(geoX, geoY-1, worldZ, NSWEWest) &&
			e.CheckNearestNSWE(geoX-1, geoY, worldZ, NSWENorth)
	case nswe&NSWESouthEast == NSWESouthEast:
		ok = e.CheckNearestNSWE(geoX, geoY+1, worldZ, NSWEEast) &&
			e.CheckNearestNSWE(geoX+1, geoY, worldZ, NSWESouth)
	case nswe&NSWESouthWest == NSWESouthWest:
		ok = e.CheckNearestNSWE(geoX, geoY+1, worldZ, NSWEWest) &&
			e.CheckNearestNSWE(geoX-1, geoY, worldZ, NSWESouth)
	}
	return ok && e.CheckNearestNSWE(geoX, geoY, worldZ, nswe)
}

// GetHeight returns the geodata height nearest to worldZ at a world position.
// Returns worldZ unchanged where there is no geodata.
func (e *Engine) GetHeight(worldX, worldY, worldZ int32) int32 {
	return e.NearestZ(GeoX(worldX), GeoY(worldY), worldZ)
}

// GetSpawnHeight returns the floor a spawn at (worldX, worldY, worldZ) should
// stand on: the next layer below a slightly raised probe, unless that layer
// is further than SpawnZDeltaLimit from worldZ.
func (e *Engine) GetSpawnHeight(worldX, worldY, worldZ int32) int32 {
	geoX, geoY := GeoX(worldX), GeoY(worldY)
	if !e.HasGeo(geoX, geoY) {
		return worldZ
	}

	lower := e.NextLowerZ(geoX, geoY, worldZ+spawnZProbe)
	if abs32(lower-worldZ) <= e.cfg.SpawnZDeltaLimit {
		return lower
	}
	return worldZ
}
