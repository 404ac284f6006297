package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/dgallion1/docstruct/internal/docmodel"
	"github.com/dgallion1/docstruct/internal/qa"
	"github.com/dgallion1/docstruct/internal/table"
	"github.com/dgallion1/docstruct/internal/vision"
	"github.com/fumiama/go-docx"

	// Decoders for the image formats commonly embedded in docx media.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DocxExtractor handles .docx files. Heading-styled paragraphs and the
// body text between them are reconstructed into nested question/answer
// units; document tables become table markup.
type DocxExtractor struct {
	vision *vision.Client
	log    *slog.Logger
}

func (e *DocxExtractor) Extract(ctx context.Context, _ string, data []byte, opts Options, progress Progress) (*Result, error) {
	progress = ensureProgress(progress)

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var describer qa.Describer
	if e.vision != nil && opts.UsesVision() {
		describer = e.vision
	}
	rec := qa.New(e.log, describer, vision.LayoutPrompt, opts.FromPage, opts.ToPage)

	res := &Result{Hierarchical: true}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			rec.Feed(ctx, paragraphOf(doc, it))
		case *docx.Table:
			if markup := table.Normalize(tableGrid(it)); markup != "" {
				res.Tables = append(res.Tables, docmodel.Table{Markup: markup})
			}
		}
	}
	res.Units = rec.Finish()
	progress(0.8, "document reconstruction finished")
	return res, nil
}

// paragraphOf flattens one docx paragraph into the reconstructor's input:
// run text, heading level from the paragraph style, rendered page breaks,
// and any embedded pictures (multiple pictures in one paragraph are
// stacked vertically).
func paragraphOf(doc *docx.Docx, para *docx.Paragraph) qa.Paragraph {
	var buf strings.Builder
	var img image.Image
	breaks := 0

	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				buf.WriteString(t.Text)
			case *docx.BarterRabbet:
				if t.Type == "page" {
					breaks++
				}
			case *docx.Drawing:
				if decoded := drawingImage(doc, t); decoded != nil {
					img = qa.ConcatVertical(img, decoded)
				}
			}
		}
	}

	return qa.Paragraph{
		Text:       strings.TrimSpace(buf.String()),
		Level:      headingLevel(para),
		Image:      img,
		PageBreaks: breaks,
	}
}

// headingLevel maps the paragraph style to a heading level 1-6, or 0 for
// body text.
func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	for lvl := 1; lvl <= 6; lvl++ {
		if style == fmt.Sprintf("heading%d", lvl) {
			return lvl
		}
	}
	return 0
}

// drawingImage resolves a drawing to its decoded media image. Anything
// missing along the relationship chain yields nil rather than an error;
// a document with an undecodable picture is still worth processing.
func drawingImage(doc *docx.Docx, d *docx.Drawing) image.Image {
	var blip *docx.ABlip
	switch {
	case d.Inline != nil && d.Inline.Graphic != nil && d.Inline.Graphic.GraphicData != nil &&
		d.Inline.Graphic.GraphicData.Pic != nil && d.Inline.Graphic.GraphicData.Pic.BlipFill != nil:
		blip = &d.Inline.Graphic.GraphicData.Pic.BlipFill.Blip
	case d.Anchor != nil && d.Anchor.Graphic != nil && d.Anchor.Graphic.GraphicData != nil &&
		d.Anchor.Graphic.GraphicData.Pic != nil && d.Anchor.Graphic.GraphicData.Pic.BlipFill != nil:
		blip = &d.Anchor.Graphic.GraphicData.Pic.BlipFill.Blip
	}
	if blip == nil || blip.Embed == "" {
		return nil
	}

	target, err := doc.ReferTarget(blip.Embed)
	if err != nil {
		return nil
	}
	media := doc.Media(strings.TrimPrefix(target, "media/"))
	if media == nil {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(media.Data))
	if err != nil {
		return nil
	}
	return img
}

// tableGrid flattens a docx table into rows of trimmed cell text.
func tableGrid(t *docx.Table) [][]string {
	var rows [][]string
	for _, r := range t.TableRows {
		var row []string
		for _, c := range r.TableCells {
			var cell strings.Builder
			for _, p := range c.Paragraphs {
				txt := cellParagraphText(p)
				if txt == "" {
					continue
				}
				if cell.Len() > 0 {
					cell.WriteString("\n")
				}
				cell.WriteString(txt)
			}
			row = append(row, cell.String())
		}
		rows = append(rows, row)
	}
	return rows
}

func cellParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
