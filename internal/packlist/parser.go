package packlist

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"proforma/internal/util"
)

// SplitLine splits one record on ';' outside double quotes and on TAB anywhere.
// Quote characters are dropped; an unterminated quote swallows the rest of the line.
func SplitLine(line string) []string {
	parts := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case (r == ';' && !inQuotes) || r == '\t':
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	parts = append(parts, current.String())
	return parts
}

// ParseRows returns the data rows of a delimited document. Blank lines are
// skipped and the first remaining line is treated as the header.
func ParseRows(raw string) [][]string {
	lines := util.Lines(Decode([]byte(raw)))
	if len(lines) < 2 {
		return nil
	}
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, SplitLine(line))
	}
	return rows
}

// Decode returns the content as UTF-8, reading it as Windows-1252 when it is
// not valid UTF-8 (spreadsheet exports on Windows).
func Decode(content []byte) string {
	content = trimBOM(content)
	if utf8.Valid(content) {
		return string(content)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(out)
}

func trimBOM(content []byte) []byte {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:]
	}
	return content
}

// Field returns the trimmed cell at i or "" when the row is short.
func Field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
