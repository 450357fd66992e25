package util

import "testing"

func TestParseIntPrefix(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
	}{
		{name: "plain", input: "3", want: 3},
		{name: "padded", input: "  12 ", want: 12},
		{name: "trailing junk", input: "5pcs", want: 5},
		{name: "decimal cut", input: "2.9", want: 2},
		{name: "negative", input: "-4", want: -4},
		{name: "empty", input: "", want: 0},
		{name: "letters", input: "abc", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseIntPrefix(tc.input); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "dot", input: "12.50", want: 12.5, ok: true},
		{name: "comma", input: "12,50", want: 12.5, ok: true},
		{name: "suffix", input: "9.99 EUR", want: 9.99, ok: true},
		{name: "blank", input: " ", ok: false},
		{name: "text", input: "n/a", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDecimal(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName("<abc@x.y>"); got != "_abc@x.y_" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeFileName("INV-2026-00001/2"); got != "INV-2026-00001_2" {
		t.Fatalf("got %q", got)
	}
}
