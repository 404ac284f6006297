package table

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var tableRe = regexp.MustCompile(`(?is)<table[^>]*>.*?</table>`)

// ExtractHTML pulls <table> elements out of mixed markup, as produced by
// the vision extraction prompt (Markdown with inline HTML tables). It
// returns one cell grid per table plus the remaining text with the tables
// removed. Malformed table fragments are skipped.
func ExtractHTML(src string) ([][][]string, string) {
	var grids [][][]string
	rest := tableRe.ReplaceAllStringFunc(src, func(frag string) string {
		grid, err := parseGrid(frag)
		if err == nil && len(grid) > 0 {
			grids = append(grids, grid)
		}
		return ""
	})
	return grids, strings.TrimSpace(rest)
}

// parseGrid parses a single <table> fragment into rows of cell text.
// Spanned cells are repeated so Normalize can re-collapse them.
func parseGrid(frag string) ([][]string, error) {
	doc, err := html.Parse(strings.NewReader(frag))
	if err != nil {
		return nil, err
	}

	var grid [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
					continue
				}
				text := textContent(c)
				for i := 0; i < colspan(c); i++ {
					row = append(row, text)
				}
			}
			if len(row) > 0 {
				grid = append(grid, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return grid, nil
}

func colspan(n *html.Node) int {
	for _, a := range n.Attr {
		if a.Key == "colspan" {
			span := 0
			for _, r := range a.Val {
				if r < '0' || r > '9' {
					return 1
				}
				span = span*10 + int(r-'0')
			}
			if span > 1 {
				return span
			}
		}
	}
	return 1
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
