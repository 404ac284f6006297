// Package extractor turns raw document bytes into the pipeline's data
// model. Each supported format has its own extraction path; pdf
// additionally selects between the remote layout engine, embedded plain
// text, and a vision model at request time.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docstruct/internal/docmodel"
	"github.com/dgallion1/docstruct/internal/layoutsvc"
	"github.com/dgallion1/docstruct/internal/vision"
)

// ErrUnsupportedFormat is returned before any extraction work begins for
// filenames outside the recognized set.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Options are the per-request knobs that affect extraction.
type Options struct {
	// FromPage/ToPage bound the requested page range [FromPage, ToPage).
	// ToPage <= 0 means no upper bound.
	FromPage int
	ToPage   int
	// Lang is a tokenization hint passed through to the indexer; it does
	// not affect structural logic.
	Lang string
	// LayoutRecognize selects the pdf path: "layout" (remote engine,
	// default), "plain" (embedded text), anything else names a vision
	// model. It also enables vision descriptions for docx images.
	LayoutRecognize string
}

// UsesVision reports whether the options name a vision model.
func (o Options) UsesVision() bool {
	switch o.LayoutRecognize {
	case "", "layout", "plain":
		return false
	}
	return true
}

// Progress reports a bounded observability checkpoint. Implementations
// must not block indefinitely; the pipeline forwards these to job state.
type Progress func(pct float64, msg string)

// Result is everything one extraction path produces for a document.
// Linear sources fill Blocks/Tables/Outline; hierarchical (docx) sources
// fill Units and Tables instead.
type Result struct {
	Blocks  []docmodel.Block
	Tables  []docmodel.Table
	Outline []docmodel.OutlineEntry

	Units        []docmodel.QAUnit
	Hierarchical bool

	// Unsectioned marks content with no recoverable structure (vision
	// transcriptions); the merger emits its blocks verbatim instead of
	// running structural inference over them.
	Unsectioned bool
}

// Extractor is one extraction path.
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte, opts Options, progress Progress) (*Result, error)
}

// Registry wires the external collaborators into the per-format paths.
type Registry struct {
	Layout *layoutsvc.Client
	Vision *vision.Client
	Log    *slog.Logger
}

// ForFile returns the extraction path for a filename, or
// ErrUnsupportedFormat.
func (g *Registry) ForFile(filename string) (Extractor, error) {
	log := g.Log
	if log == nil {
		log = slog.Default()
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		return &PDFExtractor{layout: g.Layout, vision: g.Vision, log: log}, nil
	case ".docx":
		return &DocxExtractor{vision: g.Vision, log: log}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".txt":
		return &TextExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

func noProgress(float64, string) {}

func ensureProgress(p Progress) Progress {
	if p == nil {
		return noProgress
	}
	return p
}
