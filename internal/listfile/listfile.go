// Package listfile reads the newline-delimited resource lists the pipeline
// is driven by (cleaning list, patch series, flag lists).
package listfile

import (
	"bufio"
	"os"
	"strings"
)

// Read returns the non-empty, non-comment lines of path in order.
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}
