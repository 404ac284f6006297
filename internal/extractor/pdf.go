package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docstruct/internal/docmodel"
	"github.com/dgallion1/docstruct/internal/layoutsvc"
	"github.com/dgallion1/docstruct/internal/table"
	"github.com/dgallion1/docstruct/internal/vision"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor handles pdf files. The layout engine path recovers
// geometry, layout labels, and the outline; the plain path reads only
// the embedded text; the vision path renders pages and asks a model to
// transcribe them, falling back to the layout engine on failure.
type PDFExtractor struct {
	layout *layoutsvc.Client
	vision *vision.Client
	log    *slog.Logger
}

func (e *PDFExtractor) Extract(ctx context.Context, name string, data []byte, opts Options, progress Progress) (*Result, error) {
	progress = ensureProgress(progress)

	switch {
	case opts.LayoutRecognize == "plain":
		return extractPlainPDF(data, opts)
	case opts.UsesVision():
		res, err := e.extractVision(ctx, name, data, opts, progress)
		if err == nil {
			return res, nil
		}
		e.log.Warn("vision extraction failed, falling back to layout engine",
			"model", opts.LayoutRecognize, "error", err)
		fallthrough
	default:
		return e.extractLayout(ctx, name, data, opts, progress)
	}
}

// extractLayout runs the remote layout engine over the page range and
// converts its response into positioned blocks, tables, and the outline.
func (e *PDFExtractor) extractLayout(ctx context.Context, name string, data []byte, opts Options, progress Progress) (*Result, error) {
	if e.layout == nil {
		return nil, errors.New("layout engine not configured")
	}

	progress(0.2, "OCR started")
	analysis, err := e.layout.Analyze(ctx, name, data, opts.FromPage, opts.ToPage)
	if err != nil {
		return nil, fmt.Errorf("layout analysis: %w", err)
	}
	progress(0.65, "layout analysis finished")

	res := &Result{
		Blocks:  analysis.Blocks,
		Outline: analysis.Outline,
	}
	for _, t := range analysis.Tables {
		if t.Markup == "" {
			continue
		}
		res.Tables = append(res.Tables, t)
	}
	progress(0.67, "table analysis finished")
	return res, nil
}

// extractPlainPDF reads the text embedded in the pdf without any layout
// recovery. Blocks carry zero positions; structure is inferred from
// bullet patterns downstream.
func extractPlainPDF(data []byte, opts Options) (*Result, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	toPage := opts.ToPage
	if toPage <= 0 {
		toPage = 1 << 30
	}

	res := &Result{}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if i-1 < opts.FromPage || i-1 >= toPage {
			continue
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, para := range splitPlainText(text) {
			res.Blocks = append(res.Blocks, docmodel.Block{
				Text:      para,
				Positions: []docmodel.Position{{}},
			})
		}
	}
	return res, nil
}

func splitPlainText(text string) []string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para != "" {
			paragraphs = append(paragraphs, para)
		}
	}
	return paragraphs
}

// extractVision renders each requested page through the layout service
// and asks the vision model to transcribe it as markdown. HTML table
// fragments in the transcription become table markup; the remaining text
// becomes one unpositioned block per page, which the merger emits
// verbatim.
func (e *PDFExtractor) extractVision(ctx context.Context, name string, data []byte, opts Options, progress Progress) (*Result, error) {
	if e.layout == nil {
		return nil, errors.New("layout engine not configured for page rendering")
	}
	if e.vision == nil {
		return nil, errors.New("vision model not configured")
	}

	pages, err := e.layout.Render(ctx, name, data, opts.FromPage, opts.ToPage)
	if err != nil {
		return nil, fmt.Errorf("render pages: %w", err)
	}

	res := &Result{Unsectioned: true}
	for i, png := range pages {
		md, err := e.vision.ExtractPage(ctx, png)
		if err != nil {
			return nil, fmt.Errorf("vision transcription of page %d: %w", opts.FromPage+i, err)
		}
		grids, rest := table.ExtractHTML(md)
		for _, grid := range grids {
			if markup := table.Normalize(grid); markup != "" {
				res.Tables = append(res.Tables, docmodel.Table{Markup: markup})
			}
		}
		if rest != "" {
			res.Blocks = append(res.Blocks, docmodel.Block{
				Text:      rest,
				Positions: []docmodel.Position{{Page: opts.FromPage + i}},
			})
		}
	}
	progress(0.8, "vision model parsing finished")
	return res, nil
}
