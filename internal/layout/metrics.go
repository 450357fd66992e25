package layout

// Helvetica advance widths for printable ASCII, in 1/1000 em.
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // ' ' .. '/'
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, // '0' .. '9'
	278, 278, 584, 584, 584, 556, 1015, // ':' .. '@'
	667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, // 'A' .. 'M'
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, // 'N' .. 'Z'
	278, 278, 278, 469, 556, 333, // '[' .. '`'
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, // 'a' .. 'm'
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, // 'n' .. 'z'
	334, 260, 334, 584, // '{' .. '~'
}

const defaultGlyphWidth = 556

func TextWidth(s string, size float64) float64 {
	total := 0
	for _, r := range s {
		if r >= 32 && r <= 126 {
			total += helveticaWidths[r-32]
		} else {
			total += defaultGlyphWidth
		}
	}
	return float64(total) * size / 1000
}

// TruncateToWidth drops trailing characters until s plus "..." fits maxWidth.
// At least one character is always kept.
func TruncateToWidth(s string, size, maxWidth float64) string {
	if TextWidth(s, size) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && TextWidth(string(runes)+"...", size) > maxWidth {
		runes = runes[:len(runes)-1]
	}
	if len(runes) == 0 {
		runes = []rune(s)[:1]
	}
	return string(runes) + "..."
}
