// Package docmodel holds the data types shared across the extraction and
// chunking pipeline: positioned text blocks, outline entries, normalized
// tables, reconstructed Q/A units, and the indexable output records.
package docmodel

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Position is one geometry fragment of an extracted item: the page it
// appears on plus its bounding box in layout coordinates. A block that
// spans multiple lines carries one Position per fragment.
type Position struct {
	Page   int     `json:"page"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// IsZero reports whether the position carries no geometry at all, the
// sentinel used for content with no source coordinates (plain-text or
// vision-sourced pages).
func (p Position) IsZero() bool {
	return p.Page == 0 && p.Left == 0 && p.Right == 0 && p.Top == 0 && p.Bottom == 0
}

// Tag encodes the position as an inline provenance marker appended to
// chunk text. The four spatial fields are rounded to one decimal place,
// half away from zero. All-zero positions encode as the empty string.
func (p Position) Tag() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("@@%d\t%s\t%s\t%s\t%s##",
		p.Page, dec1(p.Left), dec1(p.Right), dec1(p.Top), dec1(p.Bottom))
}

// TagAll joins the tags of a fragment sequence with tabs. Fragments with
// no geometry contribute nothing.
func TagAll(positions []Position) string {
	tags := make([]string, 0, len(positions))
	for _, p := range positions {
		tags = append(tags, p.Tag())
	}
	return strings.Join(tags, "\t")
}

func dec1(v float64) string {
	return fmt.Sprintf("%.1f", math.Round(v*10)/10)
}

// Block is one extracted, positioned unit of source text with the layout
// label the extraction engine assigned to it ("text", "title", ...).
// Blocks are immutable once read.
type Block struct {
	Text        string
	LayoutLabel string
	Positions   []Position
}

// OutlineEntry is one heading from the layout engine's document outline.
// Outlines are optional and only trusted when dense enough relative to
// the block count.
type OutlineEntry struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Table is a normalized table ready for indexing. Markup is a
// self-contained HTML table; Positions travel alongside as structured
// metadata and are never inlined into the markup.
type Table struct {
	Markup    string
	Positions []Position
}

// QAUnit is a reconstructed nested question path paired with its answer
// content. Image is the vertically concatenated pending image, if the
// answer carried pictures that were not described by a vision model.
type QAUnit struct {
	HeadingPath []string
	Answer      string
	Image       image.Image
}

// RecordType discriminates the indexable output records.
type RecordType string

const (
	RecordChunk RecordType = "chunk"
	RecordTable RecordType = "table"
	RecordQA    RecordType = "qa"
)

// Record is one ordered output unit handed to the indexer. Text is clean
// of inline tags; geometry recovered from the tags (or carried by the
// source table) lives in Positions.
type Record struct {
	ID        string     `json:"id"`
	Type      RecordType `json:"type"`
	Text      string     `json:"text"`
	Positions []Position `json:"positions,omitempty"`
	ImagePNG  []byte     `json:"image_png,omitempty"`
}
