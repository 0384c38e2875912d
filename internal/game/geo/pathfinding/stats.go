package pathfinding

import (
	"sync/atomic"
	"time"
)

// Stats is a snapshot of search counters.
type Stats struct {
	Requests      int64         `json:"requests"`
	Found         int64         `json:"found"`
	NoPath        int64         `json:"no_path"`
	PoolExhausted int64         `json:"pool_exhausted"`
	NoGeodata     int64         `json:"no_geodata"`
	Disabled      int64         `json:"disabled"`
	AvgLatency    time.Duration `json:"avg_latency_ns"`
}

type counters struct {
	requests      atomic.Int64
	found         atomic.Int64
	noPath        atomic.Int64
	poolExhausted atomic.Int64
	noGeodata     atomic.Int64
	disabled      atomic.Int64
	searchNanos   atomic.Int64
	searches      atomic.Int64
}

func (c *counters) observe(start time.Time) {
	c.searchNanos.Add(int64(time.Since(start)))
	c.searches.Add(1)
}

func (c *counters) snapshot() Stats {
	st := Stats{
		Requests:      c.requests.Load(),
		Found:         c.found.Load(),
		NoPath:        c.noPath.Load(),
		PoolExhausted: c.poolExhausted.Load(),
		NoGeodata:     c.noGeodata.Load(),
		Disabled:      c.disabled.Load(),
	}
	if n := c.searches.Load(); n > 0 {
		st.AvgLatency = time.Duration(c.searchNanos.Load() / n)
	}
	return st
}
