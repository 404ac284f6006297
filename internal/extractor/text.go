package extractor

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/dgallion1/docstruct/internal/docmodel"
)

// TextExtractor handles plain text files. Blank lines separate blocks;
// structure is later inferred from bullet patterns since plain text has
// neither outline nor geometry.
type TextExtractor struct{}

func (e *TextExtractor) Extract(_ context.Context, _ string, data []byte, _ Options, _ Progress) (*Result, error) {
	paragraphs, err := splitParagraphs(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, para := range paragraphs {
		res.Blocks = append(res.Blocks, docmodel.Block{
			Text:      para,
			Positions: []docmodel.Position{{}},
		})
	}
	return res, nil
}

// splitParagraphs splits line-oriented text into blank-line separated
// paragraphs.
func splitParagraphs(r *bytes.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			paragraphs = append(paragraphs, current.String())
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}
