package door

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Def is one door entry of the door file.
type Def struct {
	ID        int32    `yaml:"id"`
	Name      string   `yaml:"name"`
	Nodes     [4]Point `yaml:"nodes"`
	ZMin      int32    `yaml:"z_min"`
	ZMax      int32    `yaml:"z_max"`
	Instance  int32    `yaml:"instance"`
	Open      bool     `yaml:"open"`
	Collision *bool    `yaml:"collision"`
}

type file struct {
	Doors []Def `yaml:"doors"`
}

// Table indexes doors by ID and by the geodata tiles their footprint covers.
// Safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	byID   map[int32]*Door
	byTile map[tileKey][]*Door
}

// NewTable creates an empty door table.
func NewTable() *Table {
	return &Table{
		byID:   make(map[int32]*Door),
		byTile: make(map[tileKey][]*Door),
	}
}

// Load reads a YAML door file into a new table.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading door file %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing door file %s: %w", path, err)
	}

	t := NewTable()
	for _, def := range f.Doors {
		if _, err := t.Add(def); err != nil {
			return nil, fmt.Errorf("door file %s: %w", path, err)
		}
	}
	slog.Info("loaded doors", "count", len(f.Doors), "file", path)
	return t, nil
}

// Add registers a door. IDs must be unique.
func (t *Table) Add(def Def) (*Door, error) {
	if def.ZMax <= def.ZMin {
		return nil, fmt.Errorf("door %d: %w: z range %d..%d", def.ID, ErrInvalidDoor, def.ZMin, def.ZMax)
	}

	d := &Door{
		ID:         def.ID,
		Name:       def.Name,
		Nodes:      def.Nodes,
		ZMin:       def.ZMin,
		ZMax:       def.ZMax,
		InstanceID: def.Instance,
		Collision:  def.Collision == nil || *def.Collision,
	}
	d.open.Store(def.Open)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byID[d.ID]; ok {
		return nil, fmt.Errorf("door %d: %w", d.ID, ErrDuplicateDoor)
	}
	t.byID[d.ID] = d

	minX, minY, maxX, maxY := d.bounds()
	seen := make(map[tileKey]struct{}, 4)
	for _, c := range [][2]int32{{minX, minY}, {maxX, minY}, {minX, maxY}, {maxX, maxY}} {
		key := tileOf(d.InstanceID, c[0], c[1])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		t.byTile[key] = append(t.byTile[key], d)
	}
	return d, nil
}

// Get returns the door with the given ID.
func (t *Table) Get(id int32) (*Door, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.byID[id]
	return d, ok
}

// Len returns the number of doors.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}

// SetOpen opens or closes a door.
func (t *Table) SetOpen(id int32, open bool) error {
	d, ok := t.Get(id)
	if !ok {
		return fmt.Errorf("door %d: %w", id, ErrDoorNotFound)
	}
	d.open.Store(open)
	slog.Debug("door state changed", "door", id, "open", open)
	return nil
}

// SetDead marks a door destroyed (or repaired).
func (t *Table) SetDead(id int32, dead bool) error {
	d, ok := t.Get(id)
	if !ok {
		return fmt.Errorf("door %d: %w", id, ErrDoorNotFound)
	}
	d.dead.Store(dead)
	return nil
}

// DoorBetween reports whether a closed door of the instance lies between two
// world points. Doors are looked up in every tile the segment's bounding box
// touches.
func (t *Table) DoorBetween(x, y, z, tx, ty, tz, instanceID int32, doubleFace bool) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, key := range segmentTiles(instanceID, x, y, tx, ty) {
		for _, d := range t.byTile[key] {
			if d.blocks() && d.Crosses(x, y, z, tx, ty, tz, doubleFace) {
				return true
			}
		}
	}
	return false
}
