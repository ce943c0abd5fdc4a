package patch

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

const devNull = "/dev/null"

// Parse reads a unified diff, tolerating a git/format-patch style header
// before the first file section.
func Parse(text string) (*Set, error) {
	set := &Set{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		current *File
		hunk    *Hunk
		oldSeen int
		newSeen int
	)

	flushHunk := func() error {
		if hunk == nil {
			return nil
		}
		if oldSeen != hunk.OldLines || newSeen != hunk.NewLines {
			return fmt.Errorf("%w: hunk @@ -%d,%d +%d,%d @@ has %d/%d lines",
				ErrMalformed, hunk.OldStart, hunk.OldLines, hunk.NewStart, hunk.NewLines, oldSeen, newSeen)
		}
		current.Hunks = append(current.Hunks, *hunk)
		hunk = nil
		return nil
	}
	flushFile := func() error {
		if err := flushHunk(); err != nil {
			return err
		}
		if current != nil {
			if len(current.Hunks) == 0 {
				return fmt.Errorf("%w: file section %q has no hunks", ErrMalformed, current.Target())
			}
			set.Files = append(set.Files, *current)
			current = nil
		}
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "--- "):
			if err := flushFile(); err != nil {
				return nil, err
			}
			current = &File{OldPath: stripPrefix(headerPath(line[4:]))}

		case strings.HasPrefix(line, "+++ "):
			if current == nil {
				return nil, fmt.Errorf("%w: +++ without ---", ErrMalformed)
			}
			current.NewPath = stripPrefix(headerPath(line[4:]))

		case strings.HasPrefix(line, "@@ "):
			if current == nil {
				return nil, fmt.Errorf("%w: hunk outside file section", ErrMalformed)
			}
			if err := flushHunk(); err != nil {
				return nil, err
			}
			h, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			hunk = h
			oldSeen, newSeen = 0, 0

		case hunk != nil && strings.HasPrefix(line, `\`):
			// "\ No newline at end of file" refers to the preceding line.
			if len(hunk.Lines) == 0 {
				return nil, fmt.Errorf("%w: stray no-newline marker", ErrMalformed)
			}
			hunk.Lines[len(hunk.Lines)-1].NoEOL = true

		case hunk != nil && len(line) > 0 && (line[0] == ' ' || line[0] == '+' || line[0] == '-'):
			l := Line{Op: LineOp(line[0]), Text: line[1:]}
			hunk.Lines = append(hunk.Lines, l)
			switch l.Op {
			case OpContext:
				oldSeen++
				newSeen++
			case OpDelete:
				oldSeen++
			case OpAdd:
				newSeen++
			}

		case hunk != nil && line == "":
			// Some tools emit an empty line for an empty context line.
			hunk.Lines = append(hunk.Lines, Line{Op: OpContext})
			oldSeen++
			newSeen++

		default:
			if current == nil {
				parseHeaderLine(&set.Header, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan diff: %w", err)
	}
	if err := flushFile(); err != nil {
		return nil, err
	}
	if len(set.Files) == 0 {
		return nil, fmt.Errorf("%w: no file sections", ErrMalformed)
	}
	return set, nil
}

func parseHunkHeader(line string) (*Hunk, error) {
	// @@ -oldStart[,oldLines] +newStart[,newLines] @@ [section]
	rest := strings.TrimPrefix(line, "@@ ")
	end := strings.Index(rest, " @@")
	if end < 0 {
		return nil, fmt.Errorf("%w: bad hunk header %q", ErrMalformed, line)
	}
	parts := strings.Fields(rest[:end])
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "-") || !strings.HasPrefix(parts[1], "+") {
		return nil, fmt.Errorf("%w: bad hunk header %q", ErrMalformed, line)
	}
	oldStart, oldLines, err := parseRange(parts[0][1:])
	if err != nil {
		return nil, fmt.Errorf("%w: bad hunk header %q", ErrMalformed, line)
	}
	newStart, newLines, err := parseRange(parts[1][1:])
	if err != nil {
		return nil, fmt.Errorf("%w: bad hunk header %q", ErrMalformed, line)
	}
	return &Hunk{OldStart: oldStart, OldLines: oldLines, NewStart: newStart, NewLines: newLines}, nil
}

func parseRange(s string) (start, count int, err error) {
	count = 1
	if i := strings.IndexByte(s, ','); i >= 0 {
		count, err = strconv.Atoi(s[i+1:])
		if err != nil {
			return 0, 0, err
		}
		s = s[:i]
	}
	start, err = strconv.Atoi(s)
	return start, count, err
}

func parseHeaderLine(h *Header, line string) {
	switch {
	case strings.HasPrefix(line, "From: "):
		h.Author = strings.TrimSpace(line[len("From: "):])
	case strings.HasPrefix(line, "Date: "):
		h.Date = strings.TrimSpace(line[len("Date: "):])
	case strings.HasPrefix(line, "Subject: "):
		h.Subject = strings.TrimSpace(strings.TrimPrefix(line[len("Subject: "):], "[PATCH]"))
	}
}

// headerPath drops the timestamp some diffs append after a tab.
func headerPath(s string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func stripPrefix(p string) string {
	if p == devNull {
		return ""
	}
	for _, prefix := range []string{"a/", "b/"} {
		if strings.HasPrefix(p, prefix) {
			return p[len(prefix):]
		}
	}
	return p
}
