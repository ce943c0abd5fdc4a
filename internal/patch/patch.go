// Package patch parses and applies unified diffs against a source tree.
// Application is strict: every context and deletion line must match the
// target byte-for-byte, and a mismatch fails the whole patch.
package patch

import "errors"

var (
	ErrMalformed       = errors.New("malformed unified diff")
	ErrContextMismatch = errors.New("hunk context does not match target")
	ErrTargetMissing   = errors.New("patch target file does not exist")
)

type LineOp byte

const (
	OpContext LineOp = ' '
	OpAdd     LineOp = '+'
	OpDelete  LineOp = '-'
)

type Line struct {
	Op   LineOp
	Text string // without trailing newline
	// NoEOL marks the final line of a file that ends without a newline
	// ("\ No newline at end of file").
	NoEOL bool
}

type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// File is one file section of a diff. Paths are stored with the a/ and b/
// prefixes stripped. An OldPath of "" means file creation, a NewPath of ""
// means deletion.
type File struct {
	OldPath string
	NewPath string
	Hunks   []Hunk
}

// Header is the commit-style preamble of a patch. Metadata only; it never
// influences application.
type Header struct {
	Author  string
	Date    string
	Subject string
}

type Set struct {
	Header Header
	Files  []File
}

// Target returns the path the file section applies to within a tree.
func (f File) Target() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

func (f File) IsCreate() bool { return f.OldPath == "" }
func (f File) IsDelete() bool { return f.NewPath == "" }
