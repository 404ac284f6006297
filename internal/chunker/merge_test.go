package chunker

import (
	"strings"
	"testing"

	"github.com/dgallion1/docstruct/internal/docmodel"
)

// fixedTokens maps each item text to a fixed token count so threshold
// behavior can be pinned exactly.
func fixedTokens(counts map[string]int) Tokenizer {
	return func(s string) int { return counts[s] }
}

func pos(page int, top, left float64) []docmodel.Position {
	return []docmodel.Position{{Page: page, Left: left, Right: left + 10, Top: top, Bottom: top + 10}}
}

func TestMerge_ReadingOrderSort(t *testing.T) {
	items := []Item{
		{Text: "c", SectionID: 1, Positions: pos(2, 10, 10)},
		{Text: "a", SectionID: 1, Positions: pos(1, 10, 10)},
		{Text: "b", SectionID: 1, Positions: pos(1, 50, 10)},
	}
	chunks := Merge(items, fixedTokens(map[string]int{"a": 100, "b": 100, "c": 100}))
	joined := strings.Join(chunks, "|")
	ia, ib, ic := strings.Index(joined, "a@@"), strings.Index(joined, "b@@"), strings.Index(joined, "c@@")
	if !(ia < ib && ib < ic) {
		t.Errorf("expected reading order a,b,c, got %q", joined)
	}
}

func TestMerge_SameSectionMergesUnderLimit(t *testing.T) {
	items := []Item{
		{Text: "first", SectionID: 0, Positions: pos(1, 10, 10)},
		{Text: "second", SectionID: 1, Positions: pos(1, 20, 10)},
		{Text: "third", SectionID: 1, Positions: pos(1, 30, 10)},
	}
	counts := map[string]int{"first": 100, "second": 100, "third": 100}
	chunks := Merge(items, fixedTokens(counts))
	// first/second differ in section, second/third share one.
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[1], "second") || !strings.Contains(chunks[1], "third") {
		t.Errorf("expected second+third merged, got %q", chunks[1])
	}
}

func TestMerge_TinyChunkAlwaysAbsorbs(t *testing.T) {
	// Below 32 tokens a chunk absorbs the next item even across sections.
	items := []Item{
		{Text: "tiny", SectionID: 0, Positions: pos(1, 10, 10)},
		{Text: "other", SectionID: 5, Positions: pos(1, 20, 10)},
	}
	chunks := Merge(items, fixedTokens(map[string]int{"tiny": 31, "other": 100}))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
}

func TestMerge_ThresholdIsStrict(t *testing.T) {
	// At exactly 32 tokens the small-chunk rule no longer applies: an item
	// from a different section must open a new chunk.
	items := []Item{
		{Text: "head", SectionID: 0, Positions: pos(1, 10, 10)},
		{Text: "next", SectionID: 5, Positions: pos(1, 20, 10)},
	}
	chunks := Merge(items, fixedTokens(map[string]int{"head": 32, "next": 32}))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks at the 32-token boundary, got %d: %v", len(chunks), chunks)
	}
}

func TestMerge_SectionCapIsStrict(t *testing.T) {
	// Same section merges while the running count is under 1024, stops at it.
	items := []Item{
		{Text: "big", SectionID: 1, Positions: pos(1, 10, 10)},
		{Text: "more", SectionID: 1, Positions: pos(1, 20, 10)},
		{Text: "tail", SectionID: 1, Positions: pos(1, 30, 10)},
	}
	chunks := Merge(items, fixedTokens(map[string]int{"big": 1000, "more": 24, "tail": 1}))
	// 1000 < 1024 so "more" merges (running 1024); "tail" must not.
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "more") || strings.Contains(chunks[0], "tail") {
		t.Errorf("unexpected grouping: %v", chunks)
	}
}

func TestMerge_TableIsSectionWildcard(t *testing.T) {
	items := []Item{
		{Text: "section one text", SectionID: 1, Positions: pos(1, 10, 10)},
		{Text: "<table><tr><td>x</td></tr></table>", SectionID: TableSection, Positions: pos(1, 20, 10)},
		{Text: "continuation", SectionID: 1, Positions: pos(1, 30, 10)},
	}
	counts := map[string]int{
		"section one text":                   100,
		"<table><tr><td>x</td></tr></table>": 100,
		"continuation":                       100,
	}
	chunks := Merge(items, fixedTokens(counts))
	// The table merges into the open chunk and does not change the current
	// section, so the continuation still merges too.
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
}

func TestMerge_ContiguousRuns(t *testing.T) {
	var items []Item
	texts := []string{"p", "q", "r", "s"}
	for i, txt := range texts {
		items = append(items, Item{Text: txt, SectionID: i / 2, Positions: pos(1, float64(10*i), 10)})
	}
	counts := map[string]int{"p": 100, "q": 100, "r": 100, "s": 100}
	chunks := Merge(items, fixedTokens(counts))
	// Each chunk must be a contiguous slice of the sorted order.
	var rebuilt []string
	for _, c := range chunks {
		for _, line := range strings.Split(c, "\n") {
			if i := strings.Index(line, "@@"); i > 0 {
				rebuilt = append(rebuilt, line[:i])
			}
		}
	}
	if len(rebuilt) != len(texts) {
		t.Fatalf("expected %d items in chunks, got %v", len(texts), rebuilt)
	}
	for i, txt := range texts {
		if rebuilt[i] != txt {
			t.Errorf("position %d: expected %q, got %q (reordered)", i, txt, rebuilt[i])
		}
	}
}

func TestMerge_UnsectionedEmitsVerbatim(t *testing.T) {
	// All-zero section ids disable merging entirely: one chunk per item,
	// text preserved verbatim (zero geometry adds no tags).
	items := []Item{
		{Text: "page one markdown", SectionID: 0, Positions: []docmodel.Position{{}}},
		{Text: "page two markdown", SectionID: 0, Positions: []docmodel.Position{{}}},
		{Text: "page three markdown", SectionID: 0, Positions: []docmodel.Position{{}}},
	}
	chunks := Merge(items, nil)
	if len(chunks) != len(items) {
		t.Fatalf("expected %d chunks, got %d", len(items), len(chunks))
	}
	for i, it := range items {
		if chunks[i] != it.Text {
			t.Errorf("chunk %d: expected verbatim %q, got %q", i, it.Text, chunks[i])
		}
	}
}

func TestMerge_GeometryTagsEmbedded(t *testing.T) {
	items := []Item{
		{Text: "located", SectionID: 1, Positions: []docmodel.Position{{Page: 2, Left: 1, Right: 2, Top: 3, Bottom: 4}}},
	}
	chunks := Merge(items, fixedTokens(map[string]int{"located": 100}))
	want := "located@@2\t1.0\t2.0\t3.0\t4.0##"
	if len(chunks) != 1 || chunks[0] != want {
		t.Errorf("expected %q, got %v", want, chunks)
	}
}

func TestMerge_Empty(t *testing.T) {
	if chunks := Merge(nil, nil); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %v", chunks)
	}
}
