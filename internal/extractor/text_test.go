package extractor

import (
	"context"
	"testing"
)

func TestTextExtract_ParagraphSplitting(t *testing.T) {
	src := []byte("first line\nsecond line\n\n\nnext paragraph\n")
	res, err := (&TextExtractor{}).Extract(context.Background(), "doc.txt", src, Options{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(res.Blocks))
	}
	if res.Blocks[0].Text != "first line\nsecond line" {
		t.Errorf("unexpected first block %q", res.Blocks[0].Text)
	}
	if res.Blocks[1].Text != "next paragraph" {
		t.Errorf("unexpected second block %q", res.Blocks[1].Text)
	}
}

func TestTextExtract_Empty(t *testing.T) {
	res, err := (&TextExtractor{}).Extract(context.Background(), "empty.txt", nil, Options{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(res.Blocks))
	}
}

func TestForFile_Dispatch(t *testing.T) {
	g := &Registry{}
	tests := []struct {
		name string
		ok   bool
	}{
		{"report.pdf", true},
		{"REPORT.PDF", true},
		{"handbook.docx", true},
		{"readme.md", true},
		{"notes.markdown", true},
		{"plain.txt", true},
		{"archive.zip", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		_, err := g.ForFile(tt.name)
		if tt.ok && err != nil {
			t.Errorf("ForFile(%q): unexpected error %v", tt.name, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ForFile(%q): expected unsupported-format error", tt.name)
		}
		if got := IsSupportedExtension(tt.name); got != tt.ok {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", tt.name, got, tt.ok)
		}
	}
}
