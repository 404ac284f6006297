package chunker

import (
	"sort"

	"github.com/dgallion1/docstruct/internal/docmodel"
)

const (
	// TableSection is the wildcard section id for tables; a table merges
	// into whichever chunk it lands next to in reading order.
	TableSection = -1

	// Merge thresholds, preserved from the original behavior. A chunk
	// below minMergeTokens always absorbs the next item; one below
	// maxChunkTokens absorbs items from the same section (or tables).
	minMergeTokens = 32
	maxChunkTokens = 1024
)

// Item is one positioned, section-assigned unit entering the merger:
// either a text block or a normalized table (SectionID == TableSection).
type Item struct {
	Text      string
	SectionID int
	Positions []docmodel.Position
}

// Merge sorts items into reading order and greedily merges them into
// token-bounded chunks, appending each item's geometry tags to the chunk
// text. Merging never reorders: every chunk is a contiguous run of the
// sorted sequence.
//
// When every item carries section id 0 (no sectioning information, e.g.
// pages sourced from an image-to-markdown model), merging is disabled and
// each item becomes its own chunk verbatim.
func Merge(items []Item, count Tokenizer) []string {
	if count == nil {
		count = EstimateTokens
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := firstPos(sorted[i]), firstPos(sorted[j])
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Top != b.Top {
			return a.Top < b.Top
		}
		return a.Left < b.Left
	})

	unsectioned := len(sorted) > 0
	for _, it := range sorted {
		if it.SectionID != 0 {
			unsectioned = false
			break
		}
	}

	var chunks []string
	lastSID := -2 // sentinel below any real section id
	tk := 0
	for _, it := range sorted {
		tags := docmodel.TagAll(it.Positions)

		merge := false
		if !unsectioned {
			merge = tk < minMergeTokens ||
				(tk < maxChunkTokens && (it.SectionID == lastSID || it.SectionID == TableSection))
		}

		if merge && len(chunks) > 0 {
			chunks[len(chunks)-1] += "\n" + it.Text + tags
			tk += count(it.Text)
		} else {
			chunks = append(chunks, it.Text+tags)
			tk = count(it.Text)
		}
		// Tables never redefine the current section.
		if it.SectionID > TableSection {
			lastSID = it.SectionID
		}
	}
	return chunks
}

func firstPos(it Item) docmodel.Position {
	if len(it.Positions) == 0 {
		return docmodel.Position{}
	}
	return it.Positions[0]
}
