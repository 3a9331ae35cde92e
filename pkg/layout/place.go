package layout

import (
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/mindtower/pkg/mindmap"
)

// Horizontal returns n positions on a row centered under parent, one level
// down and one level deeper. A single child sits exactly below the parent.
func Horizontal(cfg Config, parent mindmap.Position, n int) []mindmap.Position {
	out := make([]mindmap.Position, n)
	mid := float64(n-1) / 2
	for i := range out {
		out[i] = mindmap.Position{
			X: parent.X + (float64(i)-mid)*cfg.HorizontalSpacing,
			Y: parent.Y - cfg.LevelDrop,
			Z: parent.Z + cfg.LevelDepth,
		}
	}
	return out
}

// Radius returns the ring radius for n children before any drag scaling.
func Radius(cfg Config, n int) float64 {
	return math.Max(cfg.BaseRadius, float64(n)*cfg.MinArcLength/(2*math.Pi))
}

// Radial returns n positions evenly spaced on a ring centered one level below
// and deeper than parent. The first child is at angle -π/2 and each next child
// advances by 2π/n. scale multiplies the radius (1 for full layouts).
func Radial(cfg Config, parent mindmap.Position, n int, scale float64) []mindmap.Position {
	out := make([]mindmap.Position, n)
	if n == 0 {
		return out
	}
	r := Radius(cfg, n) * scale
	cx, cy, cz := parent.X, parent.Y-cfg.LevelDrop, parent.Z+cfg.LevelDepth
	step := 2 * math.Pi / float64(n)
	for i := range out {
		theta := -math.Pi/2 + float64(i)*step
		out[i] = mindmap.Position{
			X: cx + r*math.Cos(theta),
			Y: cy + r*math.Sin(theta),
			Z: cz,
		}
	}
	return out
}

// RootPosition returns the position of the i-th root (in id order).
func RootPosition(cfg Config, i int) mindmap.Position {
	size := cfg.PaletteSize
	if size < 1 {
		size = 1
	}
	return mindmap.Position{X: float64(i) * cfg.RootSpacing * float64(size)}
}

// Orphan returns the fallback position of a node that no root reaches. The
// x/y scatter is pseudo-random but seeded from the id, so it is stable across
// recomputes.
func Orphan(cfg Config, id string) mindmap.Position {
	h := fnv.New64a()
	h.Write([]byte(id))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return mindmap.Position{
		X: (rng.Float64() - 0.5) * cfg.OrphanSpread,
		Y: (rng.Float64() - 0.5) * cfg.OrphanSpread,
		Z: cfg.OrphanDepth,
	}
}
