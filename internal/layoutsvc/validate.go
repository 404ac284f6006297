package layoutsvc

import (
	"strings"

	"github.com/dgallion1/docstruct/internal/docmodel"
	"github.com/dgallion1/docstruct/internal/table"
)

// convertAnalysis turns the wire response into the document model,
// dropping entries the rest of the pipeline cannot use. A malformed
// position is dropped rather than failing the whole page.
func convertAnalysis(resp *analyzeResponse) *Analysis {
	a := &Analysis{}

	for _, b := range resp.Blocks {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		block := docmodel.Block{
			Text:        text,
			LayoutLabel: b.Label,
			Positions:   convertPositions(b.Positions),
		}
		if len(block.Positions) == 0 {
			block.Positions = []docmodel.Position{{}}
		}
		a.Blocks = append(a.Blocks, block)
	}

	for _, t := range resp.Tables {
		markup := strings.TrimSpace(t.HTML)
		if markup == "" {
			markup = table.Normalize(t.Rows)
		}
		if markup == "" {
			continue
		}
		a.Tables = append(a.Tables, docmodel.Table{
			Markup:    markup,
			Positions: convertPositions(t.Positions),
		})
	}

	for _, o := range resp.Outline {
		title := strings.TrimSpace(o.Title)
		if title == "" {
			continue
		}
		depth := o.Depth
		if depth < 1 {
			depth = 1
		}
		a.Outline = append(a.Outline, docmodel.OutlineEntry{
			Text:  title,
			Level: depth,
		})
	}

	return a
}

func convertPositions(ps []positionPayload) []docmodel.Position {
	var out []docmodel.Position
	for _, p := range ps {
		if !validPosition(p) {
			continue
		}
		out = append(out, docmodel.Position{
			Page:   p.Page,
			Left:   p.Left,
			Right:  p.Right,
			Top:    p.Top,
			Bottom: p.Bottom,
		})
	}
	return out
}

func validPosition(p positionPayload) bool {
	if p.Page < 0 {
		return false
	}
	if p.Left < 0 || p.Top < 0 {
		return false
	}
	return p.Right >= p.Left && p.Bottom >= p.Top
}
