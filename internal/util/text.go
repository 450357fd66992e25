package util

import (
	"strings"
)

var fileNameReplacer = strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_", "\"", "_")

func StringPtr(v string) *string { return &v }

// FirstNonBlank returns the first value that is not blank after trimming, trimmed.
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// SanitizeFileName makes an identifier (message id, invoice number) safe to use in a path.
func SanitizeFileName(input string) string {
	out := fileNameReplacer.Replace(strings.TrimSpace(input))
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}

// Lines splits text on newlines and drops blank entries.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSuffix(p, "\r"))
		}
	}
	return out
}
