package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// Fixed2 rounds half away from zero on the shortest decimal form of v, so
// 1.005 gives "1.01" and -2.345 gives "-2.35", not the binary-exact result.
func Fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Money renders "12.50 EUR".
func Money(v float64, currency string) string {
	return Fixed2(v) + " " + currency
}

// MoneyComma renders "12,50 EUR" for the summary page.
func MoneyComma(v float64, currency string) string {
	return strings.Replace(Fixed2(v), ".", ",", 1) + " " + currency
}

func Percent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

// GermanDate renders "30. Januar 2026".
func GermanDate(t time.Time) string {
	return fmt.Sprintf("%d. %s %d", t.Day(), germanMonths[t.Month()-1], t.Year())
}

func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Cut keeps at most n runes.
func Cut(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Ellipsize shortens s to limit runes, the last three being "...".
func Ellipsize(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - 3
	if keep < 0 {
		keep = 0
	}
	return string([]rune(s)[:keep]) + "..."
}

// CellBudget is the number of characters a table cell of the given width
// holds at the given font size.
func CellBudget(width, size float64) int {
	return int(math.Floor(width / (size * 0.5)))
}

// Placeholder substitutes a bracketed hint for a blank value and reports
// whether it did.
func Placeholder(value, hint string) (string, bool) {
	if v := strings.TrimSpace(value); v != "" {
		return v, false
	}
	return hint, true
}

func dashIfBlank(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return "—"
}

func addressLines(address string) []string {
	var out []string
	for _, l := range strings.Split(address, "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
