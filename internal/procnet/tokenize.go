package procnet

import "strings"

// Tokenize splits a table line on single spaces and drops the empty
// tokens produced by the kernel's column padding.
//
// Only the space character separates columns; tabs and other whitespace
// are trimmed at the ends but otherwise stay part of a token.
func Tokenize(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), " ")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
