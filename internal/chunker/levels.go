// Package chunker reconstructs a navigable section structure from the
// flat block sequence an extraction engine produces, and merges the
// result into token-bounded chunks in reading order.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/docstruct/internal/docmodel"
)

// Tunable constants preserved from the original merge behavior. They have
// no documented derivation; treat them as compatibility knobs.
const (
	// outlineDensity is the minimum outline/block ratio at which the
	// engine-supplied outline is trusted over bullet inference.
	outlineDensity = 0.03
	// bigramSimilarity is the Jaccard threshold for matching a block
	// against an outline entry.
	bigramSimilarity = 0.8
)

// bulletFamilies groups heading/numbering patterns by style. Within a
// family, the pattern index is the heading level: earlier patterns mark
// higher-level headings.
var bulletFamilies = [][]*regexp.Regexp{
	{ // CJK statute style
		regexp.MustCompile(`^第[零一二三四五六七八九十百0-9]+(分?编|部分)`),
		regexp.MustCompile(`^第[零一二三四五六七八九十百0-9]+章`),
		regexp.MustCompile(`^第[零一二三四五六七八九十百0-9]+节`),
		regexp.MustCompile(`^第[零一二三四五六七八九十百0-9]+条`),
		regexp.MustCompile(`^[\(（][零一二三四五六七八九十百]+[\)）]`),
	},
	{ // decimal outline numbering
		regexp.MustCompile(`^第[0-9]+章`),
		regexp.MustCompile(`^第[0-9]+节`),
		regexp.MustCompile(`^[0-9]{1,2}[\. 、]`),
		regexp.MustCompile(`^[0-9]{1,2}\.[0-9]{1,2}[^a-zA-Z/%~-]`),
		regexp.MustCompile(`^[0-9]{1,2}\.[0-9]{1,2}\.[0-9]{1,2}`),
		regexp.MustCompile(`^[0-9]{1,2}\.[0-9]{1,2}\.[0-9]{1,2}\.[0-9]{1,2}`),
	},
	{ // CJK enumerations
		regexp.MustCompile(`^第[零一二三四五六七八九十百0-9]+章`),
		regexp.MustCompile(`^第[零一二三四五六七八九十百0-9]+节`),
		regexp.MustCompile(`^[零一二三四五六七八九十百]+[ 、]`),
		regexp.MustCompile(`^[\(（][零一二三四五六七八九十百]+[\)）]`),
		regexp.MustCompile(`^[\(（][0-9]{1,2}[\)）]`),
	},
	{ // circled and lettered lists
		regexp.MustCompile(`^[①②③④⑤⑥⑦⑧⑨⑩]`),
		regexp.MustCompile(`^[A-Z][\.、]\s`),
		regexp.MustCompile(`^[a-z][\)\.]\s`),
	},
	{ // English book structure
		regexp.MustCompile(`^PART (ONE|TWO|THREE|FOUR|FIVE|SIX|SEVEN|EIGHT|NINE|TEN)`),
		regexp.MustCompile(`^Chapter (I+V?|VI*|XI|IX|X)`),
		regexp.MustCompile(`^Section [0-9]+`),
		regexp.MustCompile(`^Article [0-9]+`),
	},
}

// Levels assigns a heading level to every block plus a document pivot
// level: the level at or above which a block opens a new section. The
// engine-supplied outline is used when dense enough relative to the block
// count; otherwise levels are inferred from bullet-pattern frequency.
//
// The returned slice always has exactly one level per block; a mismatch
// is a data-contract violation and aborts the document.
func Levels(blocks []docmodel.Block, outline []docmodel.OutlineEntry) ([]int, int, error) {
	var levels []int
	var pivot int
	if len(blocks) > 0 && float64(len(outline))/float64(len(blocks)) > outlineDensity {
		levels, pivot = outlineLevels(blocks, outline)
	} else {
		family := bulletsCategory(blocks)
		pivot, levels = titleFrequency(family, blocks)
	}
	if len(levels) != len(blocks) {
		return nil, 0, fmt.Errorf("levels/blocks mismatch: %d levels for %d blocks", len(levels), len(blocks))
	}
	return levels, pivot, nil
}

// outlineLevels matches each block against the outline by character-bigram
// overlap. Blocks that match no entry get maxLevel+1, which never opens a
// section.
func outlineLevels(blocks []docmodel.Block, outline []docmodel.OutlineEntry) ([]int, int) {
	maxLevel := 0
	for _, o := range outline {
		if o.Level > maxLevel {
			maxLevel = o.Level
		}
	}
	pivot := maxLevel - 1
	if pivot < 0 {
		pivot = 0
	}

	levels := make([]int, 0, len(blocks))
	for _, b := range blocks {
		level := maxLevel + 1
		for _, o := range outline {
			if bigramMatch(o.Text, b.Text) {
				level = o.Level
				break
			}
		}
		levels = append(levels, level)
	}
	return levels, pivot
}

// bigramMatch compares the character-bigram sets of an outline entry and a
// block prefix. The block contributes bigrams only over the first
// min(len(entry), len(block)-1) characters, so a heading followed by body
// text on the same block still matches its outline entry.
func bigramMatch(entry, block string) bool {
	et := []rune(entry)
	bt := []rune(block)

	a := bigramSet(et, len(et)-1)
	b := bigramSet(bt, min(len(et), len(bt)-1))

	inter := 0
	for g := range a {
		if _, ok := b[g]; ok {
			inter++
		}
	}
	den := max(len(a), len(b), 1)
	return float64(inter)/float64(den) > bigramSimilarity
}

func bigramSet(rs []rune, n int) map[string]struct{} {
	set := make(map[string]struct{}, n)
	for i := 0; i < n && i+1 < len(rs); i++ {
		set[string(rs[i:i+2])] = struct{}{}
	}
	return set
}

// bulletsCategory returns the index of the bullet family with the most
// matching blocks, or -1 when no pattern matches anywhere.
func bulletsCategory(blocks []docmodel.Block) int {
	best, bestHits := -1, 0
	for i, family := range bulletFamilies {
		hits := 0
		for _, b := range blocks {
			txt := strings.TrimSpace(b.Text)
			for _, p := range family {
				if p.MatchString(txt) {
					hits++
					break
				}
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	return best
}

// titleFrequency derives per-block levels from the winning bullet family
// and picks the most frequent heading level as the pivot. With no family
// (family < 0) every block is body text and the document has a single
// implicit section.
func titleFrequency(family int, blocks []docmodel.Block) (int, []int) {
	size := 0
	if family >= 0 {
		size = len(bulletFamilies[family])
	}

	levels := make([]int, len(blocks))
	for i := range levels {
		levels[i] = size + 1
	}
	if family < 0 || len(blocks) == 0 {
		return size + 1, levels
	}

	for i, b := range blocks {
		txt := strings.TrimSpace(b.Text)
		matched := false
		for j, p := range bulletFamilies[family] {
			if p.MatchString(txt) {
				levels[i] = j
				matched = true
				break
			}
		}
		if !matched && isTitleLabel(b.LayoutLabel) && !notTitle(txt) {
			// Layout-labelled headings that carry no bullet rank just
			// below the family's own patterns.
			levels[i] = size
		}
	}

	// Pivot: the most frequent level that can still open a section.
	counts := make(map[int]int)
	for _, l := range levels {
		counts[l]++
	}
	pivot := size + 1
	bestCount := 0
	for level, c := range counts {
		if level > size {
			continue
		}
		if c > bestCount || (c == bestCount && level < pivot) {
			pivot, bestCount = level, c
		}
	}
	return pivot, levels
}

func isTitleLabel(label string) bool {
	l := strings.ToLower(label)
	return strings.Contains(l, "title") || strings.Contains(l, "head")
}

// notTitle filters block texts that look like headings by label but read
// like body text.
func notTitle(txt string) bool {
	if regexp.MustCompile(`^第[零一二三四五六七八九十百0-9]+条`).MatchString(txt) {
		return false
	}
	if len(strings.Split(txt, " ")) > 12 {
		return true
	}
	if !strings.Contains(txt, " ") && len([]rune(txt)) >= 32 {
		return true
	}
	return strings.ContainsAny(txt, ",;，。；！!?")
}
