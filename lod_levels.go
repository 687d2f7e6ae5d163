package lodkit

import (
	"sort"

	"github.com/chewxy/math32"
)

// LODLevel is one quality tier. Index 0 is full quality; higher
// indices trade fidelity for throughput. The distance range is
// half-open: a level covers [MinDistance, MaxDistance).
type LODLevel struct {
	Index       int     `yaml:"index"`
	MinDistance float32 `yaml:"min_distance"`
	MaxDistance float32 `yaml:"max_distance"`

	QualityMultiplier float32 `yaml:"quality_multiplier"`
	VertexMultiplier  float32 `yaml:"vertex_multiplier"`
	TextureMultiplier float32 `yaml:"texture_multiplier"`
	ShadowMultiplier  float32 `yaml:"shadow_multiplier"`
}

// DefaultLevels returns the stock five-tier table.
func DefaultLevels() []LODLevel {
	inf := math32.Inf(1)
	return []LODLevel{
		{Index: 0, MinDistance: 0, MaxDistance: 50, QualityMultiplier: 1.0, VertexMultiplier: 1.0, TextureMultiplier: 1.0, ShadowMultiplier: 1.0},
		{Index: 1, MinDistance: 50, MaxDistance: 150, QualityMultiplier: 0.75, VertexMultiplier: 0.75, TextureMultiplier: 0.5, ShadowMultiplier: 1.0},
		{Index: 2, MinDistance: 150, MaxDistance: 300, QualityMultiplier: 0.5, VertexMultiplier: 0.5, TextureMultiplier: 0.25, ShadowMultiplier: 0.5},
		{Index: 3, MinDistance: 300, MaxDistance: 600, QualityMultiplier: 0.25, VertexMultiplier: 0.25, TextureMultiplier: 0.125, ShadowMultiplier: 0},
		{Index: 4, MinDistance: 600, MaxDistance: inf, QualityMultiplier: 0.1, VertexMultiplier: 0.1, TextureMultiplier: 0.0625, ShadowMultiplier: 0},
	}
}

// levelTable holds a repaired, contiguous copy of the configured
// tiers: sorted by distance, ranges stitched so they partition
// [0, +inf) with no gaps, indices reassigned in order.
type levelTable struct {
	levels []LODLevel
}

func newLevelTable(levels []LODLevel) levelTable {
	if len(levels) == 0 {
		levels = DefaultLevels()
	}

	repaired := make([]LODLevel, len(levels))
	copy(repaired, levels)
	sort.SliceStable(repaired, func(i, j int) bool {
		return repaired[i].MinDistance < repaired[j].MinDistance
	})

	for i := range repaired {
		repaired[i].Index = i
		if i == 0 {
			repaired[i].MinDistance = 0
		} else {
			repaired[i].MinDistance = repaired[i-1].MaxDistance
		}
		if i == len(repaired)-1 {
			repaired[i].MaxDistance = math32.Inf(1)
		} else if repaired[i].MaxDistance <= repaired[i].MinDistance {
			repaired[i].MaxDistance = repaired[i].MinDistance
		}
	}

	return levelTable{levels: repaired}
}

func (t *levelTable) Len() int { return len(t.levels) }

func (t *levelTable) Level(i int) LODLevel {
	if i < 0 {
		i = 0
	}
	if i >= len(t.levels) {
		i = len(t.levels) - 1
	}
	return t.levels[i]
}

// Select returns the index of the tier whose range contains dist.
// NaN counts as very far; zero and negative distances land on the
// full-quality tier; anything past the last range clamps to the
// lowest-detail tier.
func (t *levelTable) Select(dist float32) int {
	last := len(t.levels) - 1
	if math32.IsNaN(dist) {
		return last
	}
	if dist <= 0 {
		return 0
	}
	for i := range t.levels {
		if dist < t.levels[i].MaxDistance {
			return i
		}
	}
	return last
}

// selectCustom picks a level from a per-object threshold list (one
// upper bound per level, ascending). Thresholds past the table length
// are clamped.
func (t *levelTable) selectCustom(dist float32, thresholds []float32) int {
	last := len(t.levels) - 1
	if math32.IsNaN(dist) {
		return last
	}
	if dist <= 0 {
		return 0
	}
	for i, hi := range thresholds {
		if dist < hi {
			if i > last {
				return last
			}
			return i
		}
	}
	if len(thresholds) > last {
		return last
	}
	return len(thresholds)
}
