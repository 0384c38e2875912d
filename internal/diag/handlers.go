package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/door"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/fence"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo/pathfinding"
)

type healthResponse struct {
	Status             string `json:"status"`
	GeodataLoaded      bool   `json:"geodata_loaded"`
	Regions            int    `json:"regions"`
	PathfindingEnabled bool   `json:"pathfinding_enabled"`
	Database           string `json:"database,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		GeodataLoaded: s.deps.Engine.IsLoaded(),
		Regions:       s.deps.Engine.Store().LoadedCount(),
	}
	if s.deps.Paths != nil {
		resp.PathfindingEnabled = s.deps.Paths.Enabled()
	}

	status := http.StatusOK
	if s.deps.DB != nil {
		resp.Database = "ok"
		if err := s.deps.DB.Ping(r.Context()); err != nil {
			slog.Warn("database ping failed", "err", err)
			resp.Status, resp.Database = "degraded", "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

func (s *Server) listRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Engine.Store().Tiles())
}

type regionResponse struct {
	X      int             `json:"x"`
	Y      int             `json:"y"`
	Size   int             `json:"size"`
	Digest string          `json:"digest"`
	Stats  geo.RegionStats `json:"stats"`
}

func (s *Server) region(w http.ResponseWriter, r *http.Request) {
	var x, y int
	if _, err := fmt.Sscanf(chi.URLParam(r, "tile"), "%d_%d", &x, &y); err != nil {
		errorJSON(w, http.StatusBadRequest, "tile must be <x>_<y>")
		return
	}

	region, ok := s.deps.Engine.Store().Tile(x, y)
	tr, isTile := region.(*geo.TileRegion)
	if !ok || !isTile {
		errorJSON(w, http.StatusNotFound, "no geodata for tile")
		return
	}

	writeJSON(w, http.StatusOK, regionResponse{
		X:      x,
		Y:      y,
		Size:   len(tr.Bytes()),
		Digest: tr.Digest(),
		Stats:  tr.Stats(),
	})
}

type heightResponse struct {
	Height     int32 `json:"height"`
	SpawnZ     int32 `json:"spawn_z"`
	NSWE       byte  `json:"nswe"`
	HasGeodata bool  `json:"has_geodata"`
}

func (s *Server) height(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	p := q.point("")
	if q.err != nil {
		errorJSON(w, http.StatusBadRequest, q.err.Error())
		return
	}

	e := s.deps.Engine
	writeJSON(w, http.StatusOK, heightResponse{
		Height:     e.GetHeight(p.X, p.Y, p.Z),
		SpawnZ:     e.GetSpawnHeight(p.X, p.Y, p.Z),
		NSWE:       e.NearestNSWE(geo.GeoX(p.X), geo.GeoY(p.Y), p.Z),
		HasGeodata: e.HasGeoPos(p.X, p.Y),
	})
}

// segment reads the (x1,y1,z1)-(x2,y2,z2) pair and the instance.
func segment(r *http.Request) (from, to geo.Point3D, instance int32, q *query) {
	q = &query{r: r}
	from = q.point("1")
	to = q.point("2")
	instance = q.int32("instance", false)
	return from, to, instance, q
}

func (s *Server) lineOfSight(w http.ResponseWriter, r *http.Request) {
	from, to, instance, q := segment(r)
	if q.err != nil {
		errorJSON(w, http.StatusBadRequest, q.err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"visible": s.deps.Engine.CanSeeTarget(from, to, instance),
	})
}

type moveResponse struct {
	CanMove bool          `json:"can_move"`
	Valid   geo.Point3D   `json:"valid"`
	Kind    string        `json:"kind,omitempty"`
	Path    []geo.Point3D `json:"path,omitempty"`
}

func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	from, to, instance, q := segment(r)
	playable := q.bool("playable")
	if q.err != nil {
		errorJSON(w, http.StatusBadRequest, q.err.Error())
		return
	}

	e := s.deps.Engine
	resp := moveResponse{
		CanMove: e.CanMoveToTarget(from, to, instance),
		Valid:   e.GetValidLocation(from, to, instance),
	}
	if s.deps.Moves != nil {
		res, err := s.deps.Moves.Resolve(from, to, instance, playable)
		if err != nil {
			errorJSON(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		resp.Kind = res.Kind.String()
		resp.Path = res.Path
	}
	writeJSON(w, http.StatusOK, resp)
}

type pathResponse struct {
	Found bool          `json:"found"`
	Path  []geo.Point3D `json:"path"`
}

func (s *Server) path(w http.ResponseWriter, r *http.Request) {
	if s.deps.Paths == nil {
		errorJSON(w, http.StatusNotFound, "pathfinding not configured")
		return
	}

	from, to, instance, q := segment(r)
	playable := q.bool("playable")
	if q.err != nil {
		errorJSON(w, http.StatusBadRequest, q.err.Error())
		return
	}

	path := s.deps.Paths.FindPath(from, to, instance, playable)
	writeJSON(w, http.StatusOK, pathResponse{Found: path != nil, Path: path})
}

type pathStatsResponse struct {
	Enabled bool                    `json:"enabled"`
	Search  pathfinding.Stats       `json:"search"`
	Buffers []pathfinding.TierStats `json:"buffers"`
}

func (s *Server) pathStats(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Paths == nil {
		errorJSON(w, http.StatusNotFound, "pathfinding not configured")
		return
	}
	writeJSON(w, http.StatusOK, pathStatsResponse{
		Enabled: s.deps.Paths.Enabled(),
		Search:  s.deps.Paths.Stats(),
		Buffers: s.deps.Paths.Pool().Stats(),
	})
}

func idParam(r *http.Request) (int32, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	return int32(v), err
}

func (s *Server) setDoor(w http.ResponseWriter, r *http.Request) {
	if s.deps.Doors == nil {
		errorJSON(w, http.StatusNotFound, "doors not configured")
		return
	}
	id, err := idParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid door id")
		return
	}

	var body struct {
		Open bool `json:"open"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := s.deps.Doors.SetOpen(id, body.Open); err != nil {
		if errors.Is(err, door.ErrDoorNotFound) {
			errorJSON(w, http.StatusNotFound, err.Error())
			return
		}
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "open": body.Open})
}

func (s *Server) setFence(w http.ResponseWriter, r *http.Request) {
	if s.deps.Fences == nil {
		errorJSON(w, http.StatusNotFound, "fences not configured")
		return
	}
	id, err := idParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid fence id")
		return
	}

	var body struct {
		State fence.State `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	if err := s.deps.Fences.SetState(id, body.State); err != nil {
		if errors.Is(err, fence.ErrFenceNotFound) {
			errorJSON(w, http.StatusNotFound, err.Error())
			return
		}
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.deps.Persist != nil {
		if err := s.deps.Persist.UpdateState(r.Context(), id, body.State); err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "state": body.State})
}
