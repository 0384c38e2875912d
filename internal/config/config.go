// Package config loads the geodata server configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/pathfinding"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "KAMIKAZL2_GEO_CONFIG"

// DefaultConfigPath is used when EnvConfigPath is unset.
const DefaultConfigPath = "config/geoserver.yaml"

// GeoServer holds all configuration for the geodata server.
type GeoServer struct {
	LogLevel string `yaml:"log_level"`

	Geodata     GeodataConfig     `yaml:"geodata"`
	Pathfinding PathfindingConfig `yaml:"pathfinding"`
	LOS         LOSConfig         `yaml:"los"`
	Movement    MovementConfig    `yaml:"movement"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`

	// Doors is a YAML door file; empty means no doors.
	Doors string `yaml:"doors"`

	// Database
	Database     DatabaseConfig `yaml:"database"`
	FencesFromDB bool           `yaml:"fences_from_db"`
}

// GeodataConfig selects the tiles to load.
type GeodataConfig struct {
	Path        string `yaml:"path"`
	TileXMin    int    `yaml:"tile_x_min"`
	TileXMax    int    `yaml:"tile_x_max"`
	TileYMin    int    `yaml:"tile_y_min"`
	TileYMax    int    `yaml:"tile_y_max"`
	Mmap        bool   `yaml:"mmap"`
	LoadWorkers int    `yaml:"load_workers"`
}

// PathfindingConfig holds path search tunables.
type PathfindingConfig struct {
	Enabled                  bool    `yaml:"enabled"`
	Buffers                  string  `yaml:"buffers"` // "size x count" tiers, ';' separated
	AdvancedDiagonalStrategy bool    `yaml:"advanced_diagonal_strategy"`
	AvoidObstructedPathNodes bool    `yaml:"avoid_obstructed_path_nodes"`
	MaxPostfilterPasses      int     `yaml:"max_postfilter_passes"`
	LowWeight                float32 `yaml:"low_weight"`
	MediumWeight             float32 `yaml:"medium_weight"`
	HighWeight               float32 `yaml:"high_weight"`
	DiagonalWeight           float32 `yaml:"diagonal_weight"`
}

// LOSConfig holds line of sight tunables.
type LOSConfig struct {
	MaxSeeOverHeight        int32 `yaml:"max_see_over_height"`
	ElevatedSeeOverDistance int32 `yaml:"elevated_see_over_distance"`
}

// MovementConfig holds movement tunables.
type MovementConfig struct {
	MaxHeightStep    int32 `yaml:"max_height_step"`
	SpawnZDeltaLimit int32 `yaml:"spawn_z_delta_limit"`
}

// DiagnosticsConfig controls the diagnostics HTTP API.
type DiagnosticsConfig struct {
	Enabled        bool     `yaml:"enabled"`
	BindAddress    string   `yaml:"bind_address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultGeoServer returns GeoServer config with the stock L2J tunables.
func DefaultGeoServer() GeoServer {
	weights := pathfinding.DefaultWeights()
	return GeoServer{
		LogLevel: "info",
		Geodata: GeodataConfig{
			Path:        "data/geodata",
			TileXMin:    geo.TileXMin,
			TileXMax:    geo.TileXMax,
			TileYMin:    geo.TileYMin,
			TileYMax:    geo.TileYMax,
			Mmap:        true,
			LoadWorkers: 4,
		},
		Pathfinding: PathfindingConfig{
			Enabled:                  true,
			Buffers:                  pathfinding.DefaultBuffers,
			AdvancedDiagonalStrategy: true,
			AvoidObstructedPathNodes: true,
			MaxPostfilterPasses:      pathfinding.DefaultMaxPostfilterPasses,
			LowWeight:                weights.Low,
			MediumWeight:             weights.Medium,
			HighWeight:               weights.High,
			DiagonalWeight:           weights.Diagonal,
		},
		LOS: LOSConfig{
			MaxSeeOverHeight:        geo.DefaultMaxSeeOverHeight,
			ElevatedSeeOverDistance: geo.DefaultElevatedSeeOverDistance,
		},
		Movement: MovementConfig{
			MaxHeightStep:    geo.DefaultMaxHeightStep,
			SpawnZDeltaLimit: geo.DefaultSpawnZDeltaLimit,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:     true,
			BindAddress: "127.0.0.1:7790",
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "kamikazl2",
			Password: "kamikazl2",
			DBName:   "kamikazl2",
			SSLMode:  "disable",
			MaxConns: 4,
		},
	}
}

// LoadGeoServer loads geodata server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGeoServer(path string) (GeoServer, error) {
	cfg := DefaultGeoServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if _, err := cfg.Pathfinding.Config(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// SlogLevel parses LogLevel.
func (c GeoServer) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// LoadOptions converts the geodata section.
func (g GeodataConfig) LoadOptions() geo.LoadOptions {
	return geo.LoadOptions{
		Dir:      g.Path,
		TileXMin: g.TileXMin,
		TileXMax: g.TileXMax,
		TileYMin: g.TileYMin,
		TileYMax: g.TileYMax,
		Mmap:     g.Mmap,
		Workers:  g.LoadWorkers,
	}
}

// Engine builds the query engine tunables.
func (c GeoServer) Engine() geo.Config {
	return geo.Config{
		MaxSeeOverHeight:         c.LOS.MaxSeeOverHeight,
		ElevatedSeeOverDistance:  c.LOS.ElevatedSeeOverDistance,
		MaxHeightStep:            c.Movement.MaxHeightStep,
		SpawnZDeltaLimit:         c.Movement.SpawnZDeltaLimit,
		AllowObstructedPathNodes: !c.Pathfinding.AvoidObstructedPathNodes,
	}
}

// Config builds the path search configuration.
func (p PathfindingConfig) Config() (pathfinding.Config, error) {
	tiers, err := pathfinding.ParseBuffers(p.Buffers)
	if err != nil {
		return pathfinding.Config{}, err
	}
	return pathfinding.Config{
		Enabled:                  p.Enabled,
		Buffers:                  tiers,
		AdvancedDiagonalStrategy: p.AdvancedDiagonalStrategy,
		MaxPostfilterPasses:      p.MaxPostfilterPasses,
		Weights: pathfinding.Weights{
			Low:      p.LowWeight,
			Medium:   p.MediumWeight,
			High:     p.HighWeight,
			Diagonal: p.DiagonalWeight,
		},
	}, nil
}
