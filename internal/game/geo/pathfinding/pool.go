package pathfinding

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// DefaultBuffers is the stock tier list: "<size>x<count>" separated by ';'.
const DefaultBuffers = "100x6;128x6;192x6;256x4;320x4;384x4;500x2"

// Tier caps how many arenas of one edge size may exist.
type Tier struct {
	Size  int `json:"size"`
	Count int `json:"count"`
}

// ParseBuffers parses a tier list such as "100x6;128x6".
func ParseBuffers(s string) ([]Tier, error) {
	var tiers []Tier
	for part := range strings.SplitSeq(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		sizeStr, countStr, ok := strings.Cut(part, "x")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBuffers, part)
		}
		size, err := strconv.Atoi(strings.TrimSpace(sizeStr))
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("%w: bad size in %q", ErrInvalidBuffers, part)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("%w: bad count in %q", ErrInvalidBuffers, part)
		}
		tiers = append(tiers, Tier{Size: size, Count: count})
	}

	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers in %q", ErrInvalidBuffers, s)
	}
	return tiers, nil
}

type tierBuffers struct {
	Tier

	mu      sync.Mutex
	buffers []*NodeBuffer
}

// Pool hands out NodeBuffers by size. Arenas are created lazily up to each
// tier's count and never freed.
type Pool struct {
	tiers []*tierBuffers
}

// NewPool creates an empty pool; tiers are kept in ascending size order.
func NewPool(tiers []Tier) *Pool {
	sorted := slices.Clone(tiers)
	slices.SortStableFunc(sorted, func(a, b Tier) int { return a.Size - b.Size })

	p := &Pool{tiers: make([]*tierBuffers, 0, len(sorted))}
	for _, t := range sorted {
		p.tiers = append(p.tiers, &tierBuffers{Tier: t, buffers: make([]*NodeBuffer, 0, t.Count)})
	}
	return p
}

// Acquire returns a locked buffer of at least size cells, or nil when every
// fitting tier is busy and full. Never blocks on a busy buffer.
func (p *Pool) Acquire(size int) *NodeBuffer {
	for _, t := range p.tiers {
		if t.Size < size {
			continue
		}
		if b := t.acquire(); b != nil {
			return b
		}
	}
	return nil
}

func (t *tierBuffers) acquire() *NodeBuffer {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, b := range t.buffers {
		if b.TryAcquire() {
			return b
		}
	}
	if len(t.buffers) >= t.Count {
		return nil
	}

	b := NewNodeBuffer(t.Size)
	b.TryAcquire()
	t.buffers = append(t.buffers, b)
	return b
}

// TierStats reports the occupancy of one tier.
type TierStats struct {
	Tier
	Allocated int `json:"allocated"`
	InUse     int `json:"in_use"`
}

// Stats returns per-tier occupancy in ascending size order.
func (p *Pool) Stats() []TierStats {
	out := make([]TierStats, 0, len(p.tiers))
	for _, t := range p.tiers {
		t.mu.Lock()
		st := TierStats{Tier: t.Tier, Allocated: len(t.buffers)}
		for _, b := range t.buffers {
			if b.InUse() {
				st.InUse++
			}
		}
		t.mu.Unlock()
		out = append(out, st)
	}
	return out
}
