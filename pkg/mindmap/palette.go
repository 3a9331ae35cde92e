package mindmap

// Palette is the ordered list of display colors assigned round-robin to new
// nodes.
type Palette []string

// DefaultPalette is electric blue, neon pink, light yellow and soft orange.
var DefaultPalette = Palette{
	"#7df9ff",
	"#ff5ecb",
	"#fcf6bd",
	"#ffbd44",
}

// Color returns the color for the i-th created node. An empty palette yields
// an empty color.
func (p Palette) Color(i int) string {
	if len(p) == 0 {
		return ""
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}

// Len returns the number of colors, never less than one so it can be used
// as a spacing multiplier.
func (p Palette) Len() int {
	if len(p) == 0 {
		return 1
	}
	return len(p)
}
