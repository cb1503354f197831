package analysis

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const maxLineBytes = 1024 * 1024

// ReadLines loads raw "<visits> <uri>" lines from r for AddData.
// Blank lines and full-line '#' comments are dropped; every other line is
// passed through untouched so validation sees exactly what the caller
// wrote. The result is never nil.
func ReadLines(r io.Reader) ([]string, error) {
	lines := []string{}
	s := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, maxLineBytes)
	for s.Scan() {
		line := s.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan lines: %w", err)
	}
	return lines, nil
}
