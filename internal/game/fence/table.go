package fence

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
)

type tileKey struct {
	instance int32
	tile     int32
}

func tileOf(instanceID, worldX, worldY int32) tileKey {
	rx, ry := geo.RegionXY(geo.GeoX(worldX), geo.GeoY(worldY))
	return tileKey{instance: instanceID, tile: rx*geo.GeoRegionsY + ry}
}

// segmentTiles lists the distinct tiles under the corners of the bounding
// box of segment (x,y)-(tx,ty).
func segmentTiles(instanceID, x, y, tx, ty int32) []tileKey {
	keys := make([]tileKey, 0, 4)
	for _, c := range [][2]int32{{x, y}, {tx, ty}, {tx, y}, {x, ty}} {
		k := tileOf(instanceID, c[0], c[1])
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Table indexes fences by ID and by the geodata tiles they cover.
// Safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	byID   map[int32]*Fence
	byTile map[tileKey][]*Fence
}

// NewTable creates an empty fence table.
func NewTable() *Table {
	return &Table{
		byID:   make(map[int32]*Fence),
		byTile: make(map[tileKey][]*Fence),
	}
}

// tiles lists the distinct tiles touched by the fence rectangle corners.
func (f *Fence) tiles() []tileKey {
	xMin, yMin, xMax, yMax := f.Bounds()
	keys := make([]tileKey, 0, 4)
	for _, c := range [][2]int32{{xMin, yMin}, {xMax, yMin}, {xMin, yMax}, {xMax, yMax}} {
		k := tileOf(f.InstanceID, c[0], c[1])
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Add registers a fence. IDs must be unique.
func (t *Table) Add(f *Fence) error {
	if f.Width <= 0 || f.Length <= 0 {
		return fmt.Errorf("fence %d: %w: %dx%d", f.ID, ErrInvalidFence, f.Width, f.Length)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byID[f.ID]; ok {
		return fmt.Errorf("fence %d: %w", f.ID, ErrDuplicateFence)
	}
	t.byID[f.ID] = f
	for _, k := range f.tiles() {
		t.byTile[k] = append(t.byTile[k], f)
	}

	slog.Debug("fence added", "fence", f.ID, "state", f.State(), "instance", f.InstanceID)
	return nil
}

// Remove unregisters a fence.
func (t *Table) Remove(id int32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("fence %d: %w", id, ErrFenceNotFound)
	}
	delete(t.byID, id)
	for _, k := range f.tiles() {
		rest := slices.DeleteFunc(t.byTile[k], func(o *Fence) bool { return o == f })
		if len(rest) == 0 {
			delete(t.byTile, k)
		} else {
			t.byTile[k] = rest
		}
	}
	return nil
}

// Get returns the fence with the given ID.
func (t *Table) Get(id int32) (*Fence, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.byID[id]
	return f, ok
}

// SetState changes the state of a registered fence.
func (t *Table) SetState(id int32, s State) error {
	f, ok := t.Get(id)
	if !ok {
		return fmt.Errorf("fence %d: %w", id, ErrFenceNotFound)
	}
	f.SetState(s)
	return nil
}

// List returns every fence ordered by ID.
func (t *Table) List() []*Fence {
	t.mu.RLock()
	out := make([]*Fence, 0, len(t.byID))
	for _, f := range t.byID {
		out = append(out, f)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Fence) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Len returns the number of fences.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}

// FenceBetween reports whether a closed fence of the instance lies between
// two world points. Fences are looked up in every tile the segment's
// bounding box touches.
func (t *Table) FenceBetween(x, y, z, tx, ty, _, instanceID int32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, key := range segmentTiles(instanceID, x, y, tx, ty) {
		for _, f := range t.byTile[key] {
			if f.State().Blocks() && f.Crosses(x, y, z, tx, ty) {
				return true
			}
		}
	}
	return false
}
