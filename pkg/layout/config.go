package layout

import "fmt"

// Default layout constants, in scene units.
const (
	DefaultHorizontalSpacing = 60.0
	DefaultLevelDrop         = 50.0
	DefaultLevelDepth        = 20.0
	DefaultBaseRadius        = 40.0
	DefaultMinArcLength      = 30.0
	DefaultRootSpacing       = 60.0
	DefaultDragRadiusScale   = 0.8
	DefaultOrphanDepth       = -400.0
	DefaultOrphanSpread      = 200.0
	DefaultPaletteSize       = 4
)

// Config holds the geometric constants of the layout.
type Config struct {
	// HorizontalSpacing is the x distance between siblings under a root.
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	// LevelDrop is how far below its parent (negative y) a level is placed.
	LevelDrop float64 `toml:"level_drop"`
	// LevelDepth is the z increment per level.
	LevelDepth float64 `toml:"level_depth"`
	// BaseRadius is the smallest radius of a radial ring.
	BaseRadius float64 `toml:"base_radius"`
	// MinArcLength is the arc reserved per child on a radial ring.
	MinArcLength float64 `toml:"min_arc_length"`
	// RootSpacing is multiplied by PaletteSize to stagger roots along x.
	RootSpacing float64 `toml:"root_spacing"`
	// PaletteSize is the number of node colors in use.
	PaletteSize int `toml:"-"`
	// DragRadiusScale shrinks the ring while a parent is being dragged.
	DragRadiusScale float64 `toml:"drag_radius_scale"`
	// OrphanDepth is the z coordinate of unattached nodes.
	OrphanDepth float64 `toml:"orphan_depth"`
	// OrphanSpread is the x/y extent unattached nodes are scattered over.
	OrphanSpread float64 `toml:"orphan_spread"`
}

// DefaultConfig returns the default layout constants.
func DefaultConfig() Config {
	return Config{
		HorizontalSpacing: DefaultHorizontalSpacing,
		LevelDrop:         DefaultLevelDrop,
		LevelDepth:        DefaultLevelDepth,
		BaseRadius:        DefaultBaseRadius,
		MinArcLength:      DefaultMinArcLength,
		RootSpacing:       DefaultRootSpacing,
		PaletteSize:       DefaultPaletteSize,
		DragRadiusScale:   DefaultDragRadiusScale,
		OrphanDepth:       DefaultOrphanDepth,
		OrphanSpread:      DefaultOrphanSpread,
	}
}

// Validate reports the first constant that would produce overlapping or
// degenerate placements.
func (c Config) Validate() error {
	switch {
	case c.HorizontalSpacing <= 0:
		return fmt.Errorf("horizontal_spacing must be positive, got %g", c.HorizontalSpacing)
	case c.BaseRadius <= 0:
		return fmt.Errorf("base_radius must be positive, got %g", c.BaseRadius)
	case c.MinArcLength <= 0:
		return fmt.Errorf("min_arc_length must be positive, got %g", c.MinArcLength)
	case c.RootSpacing < 0:
		return fmt.Errorf("root_spacing must be non-negative, got %g", c.RootSpacing)
	case c.DragRadiusScale <= 0:
		return fmt.Errorf("drag_radius_scale must be positive, got %g", c.DragRadiusScale)
	case c.OrphanSpread < 0:
		return fmt.Errorf("orphan_spread must be non-negative, got %g", c.OrphanSpread)
	}
	return nil
}

// Option configures an [Engine].
type Option func(*Config)

// WithConfig replaces every constant with cfg.
func WithConfig(cfg Config) Option { return func(c *Config) { *c = cfg } }

// WithHorizontalSpacing sets the sibling distance under a root.
func WithHorizontalSpacing(v float64) Option { return func(c *Config) { c.HorizontalSpacing = v } }

// WithLevelDrop sets the per-level downward offset.
func WithLevelDrop(v float64) Option { return func(c *Config) { c.LevelDrop = v } }

// WithLevelDepth sets the per-level z increment.
func WithLevelDepth(v float64) Option { return func(c *Config) { c.LevelDepth = v } }

// WithBaseRadius sets the minimum radial ring radius.
func WithBaseRadius(v float64) Option { return func(c *Config) { c.BaseRadius = v } }

// WithMinArcLength sets the arc reserved per child on a ring.
func WithMinArcLength(v float64) Option { return func(c *Config) { c.MinArcLength = v } }

// WithRootSpacing sets the root stagger unit.
func WithRootSpacing(v float64) Option { return func(c *Config) { c.RootSpacing = v } }

// WithPaletteSize sets the root stagger multiplier.
func WithPaletteSize(n int) Option { return func(c *Config) { c.PaletteSize = n } }

// WithDragRadiusScale sets the ring scale used while dragging.
func WithDragRadiusScale(v float64) Option { return func(c *Config) { c.DragRadiusScale = v } }

// WithOrphanPlacement sets the z depth and x/y spread of unattached nodes.
func WithOrphanPlacement(depth, spread float64) Option {
	return func(c *Config) {
		c.OrphanDepth = depth
		c.OrphanSpread = spread
	}
}
