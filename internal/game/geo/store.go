package geo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"
)

// FileNameFormat is the geodata naming convention: "<tileX>_<tileY>.l2j".
const FileNameFormat = "%d_%d.l2j"

// CompressedSuffix marks a zstd-compressed region file ("25_19.l2j.zst").
const CompressedSuffix = ".zst"

// LoadOptions controls which tiles Store.Load reads and how.
type LoadOptions struct {
	Dir      string
	TileXMin int
	TileXMax int
	TileYMin int
	TileYMax int
	// Mmap maps uncompressed files read-only instead of copying them to the heap.
	Mmap bool
	// Workers bounds concurrent tile parsing (default 4).
	Workers int
}

// DefaultLoadOptions returns options covering the standard tile range.
func DefaultLoadOptions(dir string) LoadOptions {
	return LoadOptions{
		Dir:      dir,
		TileXMin: TileXMin,
		TileXMax: TileXMax,
		TileYMin: TileYMin,
		TileYMax: TileYMax,
		Mmap:     true,
		Workers:  4,
	}
}

// TileInfo describes one successfully loaded tile.
type TileInfo struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Path       string `json:"path"`
	Size       int    `json:"size"`
	Compressed bool   `json:"compressed"`
}

// Store holds one immutable Region per world tile.
// Load and SetRegion must complete before the store is shared;
// afterwards it is read-only and needs no locking.
type Store struct {
	regions [GeoRegions]Region
	tiles   []TileInfo
}

// NewStore creates a store where every tile answers as "no data".
func NewStore() *Store {
	s := &Store{}
	for i := range s.regions {
		s.regions[i] = noData
	}
	return s
}

// Load reads every tile file in the configured range.
// A missing file leaves the tile empty; an unreadable or corrupt file is
// logged and the tile stays empty. Only context cancellation fails the load.
// Returns the number of tiles loaded.
func (s *Store) Load(ctx context.Context, opts LoadOptions) (int, error) {
	if _, err := os.Stat(opts.Dir); err != nil {
		slog.Warn("geodata directory unavailable", "dir", opts.Dir, "err", err)
		return 0, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	for x := max(opts.TileXMin, 0); x <= min(opts.TileXMax, GeoRegionsX-1); x++ {
		for y := max(opts.TileYMin, 0); y <= min(opts.TileYMax, GeoRegionsY-1); y++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				path, compressed, ok := findTileFile(opts.Dir, x, y)
				if !ok {
					slog.Debug("no geodata for tile", "tile", tileName(x, y))
					return nil
				}

				region, err := LoadRegionFile(path, opts.Mmap)
				if err != nil {
					slog.Warn("failed to load geodata region", "file", path, "err", err)
					return nil
				}

				offset, _ := RegionOffset(int32(x), int32(y))
				s.regions[offset] = region

				mu.Lock()
				s.tiles = append(s.tiles, TileInfo{
					X:          x,
					Y:          y,
					Path:       path,
					Size:       len(region.data),
					Compressed: compressed,
				})
				mu.Unlock()
				return nil
			})
		}
	}

	err := g.Wait()

	sort.Slice(s.tiles, func(i, j int) bool {
		if s.tiles[i].X != s.tiles[j].X {
			return s.tiles[i].X < s.tiles[j].X
		}
		return s.tiles[i].Y < s.tiles[j].Y
	})

	if err != nil {
		return len(s.tiles), fmt.Errorf("loading geodata from %s: %w", opts.Dir, err)
	}

	slog.Info("geodata loaded", "regions", len(s.tiles), "dir", opts.Dir)
	return len(s.tiles), nil
}

// findTileFile prefers the uncompressed file of a tile over its .zst twin.
func findTileFile(dir string, x, y int) (path string, compressed bool, ok bool) {
	plain := filepath.Join(dir, fmt.Sprintf(FileNameFormat, x, y))
	if fileExists(plain) {
		return plain, false, true
	}
	packed := plain + CompressedSuffix
	if fileExists(packed) {
		return packed, true, true
	}
	return "", false, false
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("stat geodata file", "file", path, "err", err)
		}
		return false
	}
	return fi.Mode().IsRegular()
}

// LoadRegionFile parses one region file. Files ending in ".zst" are
// decompressed to the heap; others are mapped when useMmap is set.
func LoadRegionFile(path string, useMmap bool) (*TileRegion, error) {
	var (
		data  []byte
		unmap func() error
		err   error
	)

	switch {
	case strings.HasSuffix(path, CompressedSuffix):
		data, err = readCompressed(path)
	case useMmap:
		data, unmap, err = mapFile(path)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading geodata %s: %w", path, err)
	}

	region, err := ParseRegion(data)
	if err != nil {
		if unmap != nil {
			_ = unmap()
		}
		return nil, fmt.Errorf("parsing geodata %s: %w", path, err)
	}
	region.unmap = unmap
	return region, nil
}

func readCompressed(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return data, nil
}

// SetRegion installs a region for tile (tileX, tileY). Passing nil clears the tile.
func (s *Store) SetRegion(tileX, tileY int, region Region) error {
	offset, ok := RegionOffset(int32(tileX), int32(tileY))
	if !ok {
		return fmt.Errorf("set region %s: %w", tileName(tileX, tileY), ErrTileOutOfRange)
	}

	if region == nil {
		region = noData
	}
	s.regions[offset] = region

	s.tiles = removeTile(s.tiles, tileX, tileY)
	if region.HasGeo() {
		info := TileInfo{X: tileX, Y: tileY}
		if tr, ok := region.(*TileRegion); ok {
			info.Size = len(tr.data)
		}
		s.tiles = append(s.tiles, info)
	}
	return nil
}

func removeTile(tiles []TileInfo, x, y int) []TileInfo {
	out := tiles[:0]
	for _, t := range tiles {
		if t.X != x || t.Y != y {
			out = append(out, t)
		}
	}
	return out
}

// Region returns the region covering geo cell (geoX, geoY).
// Cells outside the grid resolve to the shared no-data region.
func (s *Store) Region(geoX, geoY int32) Region {
	if geoX < 0 || geoY < 0 {
		return noData
	}
	offset, ok := RegionOffset(RegionXY(geoX, geoY))
	if !ok {
		return noData
	}
	return s.regions[offset]
}

// Tile returns the region stored for tile (tileX, tileY).
func (s *Store) Tile(tileX, tileY int) (Region, bool) {
	offset, ok := RegionOffset(int32(tileX), int32(tileY))
	if !ok {
		return nil, false
	}
	r := s.regions[offset]
	return r, r.HasGeo()
}

// LoadedCount returns the number of tiles holding geodata.
func (s *Store) LoadedCount() int {
	return len(s.tiles)
}

// Tiles returns a copy of the loaded tile list ordered by (x, y).
func (s *Store) Tiles() []TileInfo {
	out := make([]TileInfo, len(s.tiles))
	copy(out, s.tiles)
	return out
}

// Close releases every file mapping held by the store.
func (s *Store) Close() error {
	var errs []error
	for i, r := range s.regions {
		if tr, ok := r.(*TileRegion); ok {
			if err := tr.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.regions[i] = noData
	}
	s.tiles = nil
	return errors.Join(errs...)
}

func tileName(x, y int) string {
	return fmt.Sprintf("%d_%d", x, y)
}
