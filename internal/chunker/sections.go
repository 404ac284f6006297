package chunker

// AssignSections converts per-block heading levels into monotonically
// non-decreasing section ids, starting at 0. A block opens a new section
// when its level is at or above the pivot (numerically <= pivot) and
// differs from the level of the block immediately before it; a run of
// same-level headings stays in one section.
func AssignSections(levels []int, pivot int) []int {
	ids := make([]int, len(levels))
	sid := 0
	for i, level := range levels {
		if i > 0 && level <= pivot && level != levels[i-1] {
			sid++
		}
		ids[i] = sid
	}
	return ids
}
