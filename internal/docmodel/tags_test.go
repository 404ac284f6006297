package docmodel

import "testing"

func TestExtractTags_RoundTrip(t *testing.T) {
	p := Position{Page: 3, Left: 10.25, Right: 90.5, Top: 5, Bottom: 15.75}
	text := "section body" + p.Tag()

	clean, positions := ExtractTags(text)
	if clean != "section body" {
		t.Errorf("expected clean text, got %q", clean)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	got := positions[0]
	if got.Page != 3 || got.Left != 10.3 || got.Right != 90.5 || got.Top != 5.0 || got.Bottom != 15.8 {
		t.Errorf("unexpected decoded position %+v", got)
	}
}

func TestExtractTags_MultipleFragments(t *testing.T) {
	a := Position{Page: 1, Left: 1, Right: 2, Top: 3, Bottom: 4}
	b := Position{Page: 2, Left: 5, Right: 6, Top: 7, Bottom: 8}
	text := "first" + a.Tag() + "\nsecond" + b.Tag()

	clean, positions := ExtractTags(text)
	if clean != "first\nsecond" {
		t.Errorf("expected tags removed, got %q", clean)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[1].Page != 2 {
		t.Errorf("expected page 2, got %d", positions[1].Page)
	}
}

func TestExtractTags_NoTags(t *testing.T) {
	clean, positions := ExtractTags("plain text only")
	if clean != "plain text only" {
		t.Errorf("text without tags must come back unchanged, got %q", clean)
	}
	if positions != nil {
		t.Errorf("expected nil positions, got %v", positions)
	}
}
