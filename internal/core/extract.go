package core

import "regexp"

// urlPattern matches http(s) URLs up to the next whitespace character.
// RE2's \s is ASCII only, so vertical tab, Unicode separators and the BOM are
// excluded explicitly.
var urlPattern = regexp.MustCompile(`https?://[^\s\v\p{Z}\x{FEFF}]+`)

// ExtractFromText returns every URL-shaped token in text, in order of appearance.
func ExtractFromText(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// ExtractFromCells returns cell values as candidates. Values are passed through
// unchanged; the classifier discards anything that is not a platform link.
func ExtractFromCells(cells []Cell) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		out = append(out, c.Value)
	}
	return out
}
