// Package qa reconstructs nested question/answer units from the linear
// paragraph stream of a hierarchical document (heading-styled questions
// with body-text answers). All state is per-document.
package qa

import (
	"context"
	"image"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgallion1/docstruct/internal/docmodel"
)

// Paragraph is one unit of the stream feeding the reconstructor.
type Paragraph struct {
	Text string
	// Level is 1-6 for heading-styled paragraphs, 0 for body text.
	// Out-of-range levels (>6) are treated as body text.
	Level int
	// Image is an embedded picture carried by this paragraph, if any.
	Image image.Image
	// PageBreaks counts the rendered page breaks this paragraph carries;
	// the page counter advances after the paragraph is consumed.
	PageBreaks int
}

// Describer turns an image into descriptive text. Implemented by the
// vision client; nil means no vision model is configured.
type Describer interface {
	Describe(ctx context.Context, img image.Image, prompt string) (string, error)
}

// Reconstructor is a state machine over the paragraph stream. A heading
// at level L closes the pending answer (emitting a unit keyed by the
// current heading path), pops the stacks while the top level is >= L,
// then pushes the new heading. Body paragraphs accumulate into the
// pending answer.
type Reconstructor struct {
	log       *slog.Logger
	describer Describer
	prompt    string

	fromPage int
	toPage   int
	page     int

	headings []string
	levels   []int
	answer   strings.Builder
	image    image.Image
	units    []docmodel.QAUnit
}

// New creates a reconstructor for the page range [fromPage, toPage).
// toPage <= 0 means no upper bound.
func New(log *slog.Logger, describer Describer, prompt string, fromPage, toPage int) *Reconstructor {
	if log == nil {
		log = slog.Default()
	}
	if toPage <= 0 {
		toPage = 1 << 30
	}
	return &Reconstructor{
		log:       log,
		describer: describer,
		prompt:    prompt,
		fromPage:  fromPage,
		toPage:    toPage,
	}
}

// Feed consumes the next paragraph. Paragraphs outside the requested page
// range contribute nothing to headings or answers but their page-break
// markers still advance the page counter.
func (r *Reconstructor) Feed(ctx context.Context, p Paragraph) {
	defer func() { r.page += p.PageBreaks }()

	level, text := 0, ""
	if r.page >= r.fromPage && r.page < r.toPage {
		text = strings.TrimSpace(p.Text)
		if text != "" {
			level = p.Level
		}
	}

	if level < 1 || level > 6 {
		// Body content: text and/or image joins the pending answer.
		if r.page < r.fromPage || r.page >= r.toPage {
			return
		}
		r.appendAnswer(text)
		if p.Image != nil {
			r.absorbImage(ctx, p.Image)
		}
		return
	}

	// Heading: flush whatever accumulated under the previous path.
	if r.pending() {
		r.flush()
	}
	for len(r.levels) > 0 && level <= r.levels[len(r.levels)-1] {
		r.headings = r.headings[:len(r.headings)-1]
		r.levels = r.levels[:len(r.levels)-1]
	}
	r.headings = append(r.headings, text)
	r.levels = append(r.levels, level)
}

// Finish emits the unit still accumulating at end of stream, if its
// answer text is non-empty, and returns all reconstructed units.
func (r *Reconstructor) Finish() []docmodel.QAUnit {
	if strings.TrimSpace(r.answer.String()) != "" {
		r.flush()
	}
	return r.units
}

// Page returns the current page counter.
func (r *Reconstructor) Page() int {
	return r.page
}

func (r *Reconstructor) pending() bool {
	return strings.TrimSpace(r.answer.String()) != "" || r.image != nil
}

// flush emits the pending answer under the current heading path. Content
// accumulated before any heading has no path and is dropped; the buffers
// reset either way.
func (r *Reconstructor) flush() {
	if len(r.headings) > 0 {
		r.units = append(r.units, docmodel.QAUnit{
			HeadingPath: slices.Clone(r.headings),
			Answer:      strings.TrimSpace(r.answer.String()),
			Image:       r.image,
		})
	}
	r.answer.Reset()
	r.image = nil
}

func (r *Reconstructor) appendAnswer(text string) {
	if text == "" {
		return
	}
	if r.answer.Len() > 0 {
		r.answer.WriteString("\n")
	}
	r.answer.WriteString(text)
}

// absorbImage describes the image through the vision model when one is
// configured; on failure (or with no model) the raw image is kept,
// vertically concatenated with any image already pending.
func (r *Reconstructor) absorbImage(ctx context.Context, img image.Image) {
	if r.describer != nil {
		desc, err := r.describer.Describe(ctx, img, r.prompt)
		if err == nil {
			r.appendAnswer("[Image Content]: " + desc)
			return
		}
		r.log.Warn("image description failed, keeping original image", "error", err)
	}
	r.image = ConcatVertical(r.image, img)
}
