package layout

import "github.com/matzehuels/mindtower/pkg/mindmap"

// Follow re-places the direct children of a dragged node around its live
// position at, using the radial rule with the ring scaled by
// DragRadiusScale. children must already be in id order (see
// [mindmap.MindMap.Children]); grandchildren are not touched. The cost is
// proportional to len(children).
func (e *Engine) Follow(at mindmap.Position, children []string) map[string]mindmap.Position {
	out := make(map[string]mindmap.Position, len(children))
	for i, p := range Radial(e.cfg, at, len(children), e.cfg.DragRadiusScale) {
		out[children[i]] = p
	}
	return out
}
