package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	intPrefixPattern   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefixPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// ParseIntPrefix reads the leading integer of input ("12 pcs" -> 12) and
// returns 0 when there is none.
func ParseIntPrefix(input string) int {
	m := intPrefixPattern.FindString(strings.TrimSpace(input))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// ParseDecimal reads a leading decimal number, accepting a decimal comma.
func ParseDecimal(input string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(input, "\u00A0", " "))
	s = strings.Replace(s, ",", ".", 1)
	m := floatPrefixPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func FloatPtr(v float64) *float64 { return &v }
