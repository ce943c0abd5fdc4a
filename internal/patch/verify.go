package patch

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Verify checks that got matches want byte-for-byte. On mismatch the error
// carries a character-level diff of the two contents.
func Verify(got, want []byte) error {
	if string(got) == string(want) {
		return nil
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(want), string(got), false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return fmt.Errorf("patched content diverges from expected post-image:\n%s", dmp.DiffPrettyText(diffs))
}
