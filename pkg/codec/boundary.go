package codec

import (
	"strings"
	"unicode/utf8"
)

// SplitBinary partitions NAV bytes into header and content. The header is the
// leading run of bytes whose value is below threshold; content starts at the
// first byte that is not, and runs to the end of data regardless of the values
// that follow. header and content share data's backing array.
func SplitBinary(data []byte, threshold int) (header, content []byte) {
	i := 0
	for i < len(data) && int(data[i]) < threshold {
		i++
	}
	return data[:i], data[i:]
}

// SplitText partitions text lines into header and content. The first line
// longer than threshold characters, counting its terminator, starts the
// content; every line after it is content too, whatever its length.
func SplitText(lines []string, threshold int) (header, content string) {
	var h, c strings.Builder
	started := false
	for _, line := range lines {
		started = started || utf8.RuneCountInString(line) > threshold
		if started {
			c.WriteString(line)
		} else {
			h.WriteString(line)
		}
	}
	return h.String(), c.String()
}

// SplitLines breaks text into lines, each keeping its terminator. "\n",
// "\r\n" and a lone "\r" all end a line. A final line without terminator is
// kept as is. Empty text has no lines.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
		default:
			continue
		}
		lines = append(lines, text[start:i+1])
		start = i + 1
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
