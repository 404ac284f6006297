package extractor

import (
	"bytes"
	"context"
	"strings"

	"github.com/dgallion1/docstruct/internal/docmodel"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark. Headings
// double as outline entries so structural inference can run the same
// outline-matching path as pdf documents with bookmarks.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(_ context.Context, _ string, src []byte, _ Options, _ Progress) (*Result, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	res := &Result{}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title == "" {
				continue
			}
			res.Blocks = append(res.Blocks, docmodel.Block{
				Text:        title,
				LayoutLabel: "title",
				Positions:   []docmodel.Position{{}},
			})
			res.Outline = append(res.Outline, docmodel.OutlineEntry{
				Text:  title,
				Level: node.Level,
			})
		default:
			t := extractText(n, src)
			if t == "" {
				continue
			}
			res.Blocks = append(res.Blocks, docmodel.Block{
				Text:      t,
				Positions: []docmodel.Position{{}},
			})
		}
	}
	return res, nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
