package utils

import "strings"

// NonBlankLines splits s into lines, trims each one and drops the blank ones.
// Both \n and \r\n line endings are accepted.
func NonBlankLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Pad right-pads s with spaces to width. Longer strings are returned unchanged.
func Pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
