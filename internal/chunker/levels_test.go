package chunker

import (
	"fmt"
	"testing"

	"github.com/dgallion1/docstruct/internal/docmodel"
)

func blocksFrom(texts ...string) []docmodel.Block {
	var out []docmodel.Block
	for _, t := range texts {
		out = append(out, docmodel.Block{Text: t})
	}
	return out
}

func TestLevels_CountMatchesBlocks(t *testing.T) {
	cases := [][]docmodel.Block{
		nil,
		blocksFrom("just one paragraph"),
		blocksFrom("1. Intro", "body text", "2. Methods", "more body"),
		blocksFrom("第一章 总则", "第一条 内容", "第二章 附则"),
	}
	for i, blocks := range cases {
		levels, _, err := Levels(blocks, nil)
		if err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
		if len(levels) != len(blocks) {
			t.Errorf("case %d: expected %d levels, got %d", i, len(blocks), len(levels))
		}
	}
}

func TestLevels_OutlinePathMatchesByBigrams(t *testing.T) {
	blocks := blocksFrom(
		"Introduction and Scope",
		"This document describes the general handling of widgets in detail.",
		"Widget Assembly Steps",
		"First attach the base plate to the frame.",
	)
	outline := []docmodel.OutlineEntry{
		{Text: "Introduction and Scope", Level: 1},
		{Text: "Widget Assembly Steps", Level: 2},
	}

	levels, pivot, err := Levels(blocks, outline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// maxLevel = 2, so pivot = 1 and unmatched blocks get 3.
	if pivot != 1 {
		t.Errorf("expected pivot 1, got %d", pivot)
	}
	want := []int{1, 3, 2, 3}
	for i, w := range want {
		if levels[i] != w {
			t.Errorf("block %d: expected level %d, got %d", i, w, levels[i])
		}
	}
}

func TestLevels_SparseOutlineFallsBackToBullets(t *testing.T) {
	// One outline entry against 40 blocks is below the density threshold,
	// so the bullet path must be used even though an outline exists.
	var blocks []docmodel.Block
	for i := 0; i < 20; i++ {
		blocks = append(blocks,
			docmodel.Block{Text: fmt.Sprintf("%d. Heading", i+1)},
			docmodel.Block{Text: "plain body paragraph with several words in it"},
		)
	}
	outline := []docmodel.OutlineEntry{{Text: "1. Heading", Level: 1}}

	levels, pivot, err := Levels(blocks, outline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Decimal family: "N. " is pattern index 2.
	if pivot != 2 {
		t.Errorf("expected pivot 2 from decimal family, got %d", pivot)
	}
	if levels[0] != 2 {
		t.Errorf("expected heading level 2, got %d", levels[0])
	}
	if levels[1] <= pivot {
		t.Errorf("body paragraph classified as heading: level %d", levels[1])
	}
}

func TestLevels_NoBulletsDegradesToSingleSection(t *testing.T) {
	blocks := blocksFrom(
		"plain prose without any numbering",
		"another paragraph of ordinary text",
		"and one more for good measure",
	)
	levels, pivot, err := Levels(blocks, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, l := range levels {
		if l <= pivot && l != levels[0] {
			t.Errorf("block %d: expected uniform body level, got %d (pivot %d)", i, l, pivot)
		}
	}
	ids := AssignSections(levels, pivot)
	for i, id := range ids {
		if id != 0 {
			t.Errorf("block %d: expected single section 0, got %d", i, id)
		}
	}
}

func TestBulletsCategory_PicksMostFrequentFamily(t *testing.T) {
	blocks := blocksFrom(
		"1. First",
		"2. Second",
		"3.1 Detail",
		"第一章 总则", // lone CJK hit should not win
	)
	if got := bulletsCategory(blocks); got != 1 {
		t.Errorf("expected decimal family (1), got %d", got)
	}
}

func TestBulletsCategory_NoMatches(t *testing.T) {
	if got := bulletsCategory(blocksFrom("nothing here", "still nothing")); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}

func TestTitleFrequency_LayoutLabelRanksBelowFamily(t *testing.T) {
	blocks := []docmodel.Block{
		{Text: "1. Numbered heading"},
		{Text: "Unnumbered Heading", LayoutLabel: "title"},
		{Text: "body text, with punctuation everywhere.", LayoutLabel: "text"},
	}
	family := bulletsCategory(blocks)
	if family != 1 {
		t.Fatalf("expected decimal family, got %d", family)
	}
	_, levels := titleFrequency(family, blocks)
	size := len(bulletFamilies[family])
	if levels[0] != 2 {
		t.Errorf("expected numbered heading at level 2, got %d", levels[0])
	}
	if levels[1] != size {
		t.Errorf("expected labelled heading at level %d, got %d", size, levels[1])
	}
	if levels[2] != size+1 {
		t.Errorf("expected body at level %d, got %d", size+1, levels[2])
	}
}

func TestBigramMatch_Threshold(t *testing.T) {
	if !bigramMatch("Widget Assembly Steps", "Widget Assembly Steps") {
		t.Error("identical strings must match")
	}
	if bigramMatch("Widget Assembly Steps", "Completely different text") {
		t.Error("unrelated strings must not match")
	}
	// Block text longer than the outline entry still matches on its prefix.
	if !bigramMatch("Widget Assembly Steps", "Widget Assembly Steps and further trailing words") {
		t.Error("prefix match must succeed")
	}
}
