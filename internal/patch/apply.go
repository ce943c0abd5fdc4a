package patch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ApplyFile applies one file section to src and returns the patched content.
// src is nil for file creation.
func ApplyFile(src []byte, f File) ([]byte, error) {
	lines, hasEOL := splitLines(src)

	var (
		out      []string
		pos      int
		outNoEOL bool
	)

	for _, h := range f.Hunks {
		start := h.OldStart - 1
		if h.OldLines == 0 {
			// Pure insertion: OldStart names the line after which to insert.
			start = h.OldStart
		}
		if start < pos || start > len(lines) {
			return nil, fmt.Errorf("%w: hunk at line %d out of range", ErrContextMismatch, h.OldStart)
		}
		out = append(out, lines[pos:start]...)
		pos = start

		for _, l := range h.Lines {
			switch l.Op {
			case OpContext, OpDelete:
				if pos >= len(lines) {
					return nil, fmt.Errorf("%w: expected %q past end of file", ErrContextMismatch, l.Text)
				}
				if lines[pos] != l.Text {
					return nil, fmt.Errorf("%w: line %d is %q, patch expects %q",
						ErrContextMismatch, pos+1, lines[pos], l.Text)
				}
				if l.Op == OpContext {
					out = append(out, l.Text)
					if l.NoEOL {
						outNoEOL = true
					}
				}
				pos++
			case OpAdd:
				out = append(out, l.Text)
				if l.NoEOL {
					outNoEOL = true
				}
			}
		}
	}
	out = append(out, lines[pos:]...)

	if len(out) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	for i, l := range out {
		buf.WriteString(l)
		if i < len(out)-1 {
			buf.WriteByte('\n')
		}
	}
	// When the last output line comes from the untouched tail, the source
	// decides the trailing newline; otherwise the patch's no-newline marker
	// decides.
	eol := !outNoEOL
	if pos < len(lines) {
		eol = hasEOL
	}
	if eol {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ApplyTree applies every file section of set under root. The first failing
// section aborts; files already rewritten are not rolled back, callers
// discard the tree on error.
func ApplyTree(root string, set *Set) error {
	for _, f := range set.Files {
		rel := f.Target()
		if rel == "" {
			return fmt.Errorf("%w: file section without target", ErrMalformed)
		}
		if filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") || strings.Contains(rel, "/../") {
			return fmt.Errorf("%w: target %q escapes tree", ErrMalformed, rel)
		}
		target := filepath.Join(root, filepath.FromSlash(rel))

		var src []byte
		if !f.IsCreate() {
			var err error
			src, err = os.ReadFile(target)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrTargetMissing, rel)
			}
		}

		out, err := ApplyFile(src, f)
		if err != nil {
			return fmt.Errorf("apply to %s: %w", rel, err)
		}

		if f.IsDelete() && out == nil {
			if err := os.Remove(target); err != nil {
				return fmt.Errorf("remove %s: %w", rel, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("mkdir for %s: %w", rel, err)
		}
		if err := os.WriteFile(target, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}

func splitLines(b []byte) (lines []string, trailingNewline bool) {
	if len(b) == 0 {
		return nil, true
	}
	trailingNewline = b[len(b)-1] == '\n'
	s := string(b)
	if trailingNewline {
		s = s[:len(s)-1]
	}
	return strings.Split(s, "\n"), trailingNewline
}
