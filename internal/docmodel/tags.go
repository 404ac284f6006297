package docmodel

import (
	"regexp"
	"strconv"
	"strings"
)

var tagRe = regexp.MustCompile(`@@([0-9]+)\t([0-9.]+)\t([0-9.]+)\t([0-9.]+)\t([0-9.]+)##`)

// ExtractTags strips all inline position tags from chunk text and
// returns the cleaned text together with the decoded positions, in tag
// order. Text without tags comes back unchanged with nil positions.
func ExtractTags(text string) (string, []Position) {
	matches := tagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	positions := make([]Position, 0, len(matches))
	for _, m := range matches {
		page, _ := strconv.Atoi(m[1])
		left, _ := strconv.ParseFloat(m[2], 64)
		right, _ := strconv.ParseFloat(m[3], 64)
		top, _ := strconv.ParseFloat(m[4], 64)
		bottom, _ := strconv.ParseFloat(m[5], 64)
		positions = append(positions, Position{
			Page:   page,
			Left:   left,
			Right:  right,
			Top:    top,
			Bottom: bottom,
		})
	}

	clean := strings.TrimRight(tagRe.ReplaceAllString(text, ""), "\t ")
	return clean, positions
}
