// Package table renders extracted table grids as self-contained HTML
// markup, collapsing merged cells, and recovers cell grids from HTML
// tables embedded in vision-model output.
package table

import (
	"fmt"
	"strings"
)

// Normalize renders rows of cell text as one self-contained HTML table.
// Runs of consecutive identical cells within a row collapse into a single
// cell carrying a colspan. Tables with no textual content yield the empty
// string and are dropped by callers.
func Normalize(rows [][]string) string {
	hasText := false
	var sb strings.Builder
	sb.WriteString("<table>")
	for _, row := range rows {
		sb.WriteString("<tr>")
		for i := 0; i < len(row); {
			span := 1
			for j := i + 1; j < len(row) && row[j] == row[i]; j++ {
				span++
			}
			if strings.TrimSpace(row[i]) != "" {
				hasText = true
			}
			if span == 1 {
				fmt.Fprintf(&sb, "<td>%s</td>", row[i])
			} else {
				fmt.Fprintf(&sb, "<td colspan='%d'>%s</td>", span, row[i])
			}
			i += span
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table>")
	if !hasText {
		return ""
	}
	return sb.String()
}
