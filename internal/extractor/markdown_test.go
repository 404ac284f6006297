package extractor

import (
	"context"
	"testing"
)

func TestMarkdownExtract_HeadingsBecomeOutline(t *testing.T) {
	src := []byte(`# Installation

Unpack the archive.

## Requirements

A supported kernel.

# Usage

Run the binary.
`)
	res, err := (&MarkdownExtractor{}).Extract(context.Background(), "manual.md", src, Options{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(res.Outline) != 3 {
		t.Fatalf("expected 3 outline entries, got %d", len(res.Outline))
	}
	wantOutline := []struct {
		text  string
		level int
	}{
		{"Installation", 1},
		{"Requirements", 2},
		{"Usage", 1},
	}
	for i, want := range wantOutline {
		if res.Outline[i].Text != want.text || res.Outline[i].Level != want.level {
			t.Errorf("outline[%d]: got %q level %d, want %q level %d",
				i, res.Outline[i].Text, res.Outline[i].Level, want.text, want.level)
		}
	}

	if len(res.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(res.Blocks))
	}
	if res.Blocks[0].LayoutLabel != "title" {
		t.Errorf("heading block should carry the title label, got %q", res.Blocks[0].LayoutLabel)
	}
	if res.Blocks[1].LayoutLabel != "" {
		t.Errorf("body block should carry no label, got %q", res.Blocks[1].LayoutLabel)
	}
	if res.Blocks[1].Text != "Unpack the archive." {
		t.Errorf("unexpected body text %q", res.Blocks[1].Text)
	}
}

func TestMarkdownExtract_NoHeadings(t *testing.T) {
	src := []byte("just a paragraph\n\nand another one\n")
	res, err := (&MarkdownExtractor{}).Extract(context.Background(), "notes.md", src, Options{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Outline) != 0 {
		t.Errorf("expected empty outline, got %d entries", len(res.Outline))
	}
	if len(res.Blocks) != 2 {
		t.Errorf("expected 2 blocks, got %d", len(res.Blocks))
	}
}

func TestMarkdownExtract_BlocksCarryZeroPositions(t *testing.T) {
	res, err := (&MarkdownExtractor{}).Extract(context.Background(), "a.md", []byte("# T\n\nbody\n"), Options{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i, b := range res.Blocks {
		if len(b.Positions) != 1 || !b.Positions[0].IsZero() {
			t.Errorf("block %d: expected a single zero position, got %v", i, b.Positions)
		}
	}
}
