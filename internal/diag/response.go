package diag

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
)

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// query reads integer query parameters.
type query struct {
	r   *http.Request
	err error
}

func (q *query) int32(name string, required bool) int32 {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		if required && q.err == nil {
			q.err = fmt.Errorf("missing parameter %q", name)
		}
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil && q.err == nil {
		q.err = fmt.Errorf("parameter %q: %w", name, err)
	}
	return int32(v)
}

func (q *query) bool(name string) bool {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil && q.err == nil {
		q.err = fmt.Errorf("parameter %q: %w", name, err)
	}
	return v
}

func (q *query) point(suffix string) geo.Point3D {
	return geo.Point3D{
		X: q.int32("x"+suffix, true),
		Y: q.int32("y"+suffix, true),
		Z: q.int32("z"+suffix, true),
	}
}
