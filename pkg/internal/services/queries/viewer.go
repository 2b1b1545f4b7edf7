package queries

import "github.com/samber/lo"

// ResolveFlag reports whether the viewer is one of the candidates.
// Anonymous viewers (nil) never match. Every is_*_by_me field is computed here.
func ResolveFlag(viewer *uint, candidates []uint) bool {
	if viewer == nil {
		return false
	}
	return lo.Contains(candidates, *viewer)
}
