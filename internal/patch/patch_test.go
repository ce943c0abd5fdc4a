package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const promoSrc = "" +
	"bool ShouldShowPromoAtStartup(Profile* profile, bool is_new_profile) {\n" +
	"  DCHECK(profile);\n" +
	"  if (is_new_profile)\n" +
	"    return false;\n" +
	"  return !HasShownPromoBefore(profile);\n" +
	"}\n"

const promoDiff = "From: Someone <someone@example.com>\n" +
	"Subject: [PATCH] Pin the promo decision to false\n" +
	"\n" +
	"--- a/chrome/startup_promo.cc\n" +
	"+++ b/chrome/startup_promo.cc\n" +
	"@@ -1,6 +1,4 @@\n" +
	" bool ShouldShowPromoAtStartup(Profile* profile, bool is_new_profile) {\n" +
	"   DCHECK(profile);\n" +
	"-  if (is_new_profile)\n" +
	"-    return false;\n" +
	"-  return !HasShownPromoBefore(profile);\n" +
	"+  return false;\n" +
	" }\n"

const promoWant = "" +
	"bool ShouldShowPromoAtStartup(Profile* profile, bool is_new_profile) {\n" +
	"  DCHECK(profile);\n" +
	"  return false;\n" +
	"}\n"

func TestParse_Header(t *testing.T) {
	set, err := Parse(promoDiff)
	require.NoError(t, err)

	assert.Equal(t, "Someone <someone@example.com>", set.Header.Author)
	assert.Equal(t, "Pin the promo decision to false", set.Header.Subject)
	require.Len(t, set.Files, 1)
	assert.Equal(t, "chrome/startup_promo.cc", set.Files[0].Target())
	require.Len(t, set.Files[0].Hunks, 1)
	assert.Len(t, set.Files[0].Hunks[0].Lines, 7)
}

func TestApplyFile_PromoPatch(t *testing.T) {
	set, err := Parse(promoDiff)
	require.NoError(t, err)

	got, err := ApplyFile([]byte(promoSrc), set.Files[0])
	require.NoError(t, err)
	assert.NoError(t, Verify(got, []byte(promoWant)))
}

func TestVerify_ReportsDivergence(t *testing.T) {
	assert.NoError(t, Verify([]byte("same\n"), []byte("same\n")))

	err := Verify([]byte("got\n"), []byte("want\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diverges")
}

func TestApplyFile_ContextMismatch(t *testing.T) {
	set, err := Parse(promoDiff)
	require.NoError(t, err)

	drifted := "bool ShouldShowPromoAtStartup(Profile* profile) {\n  return true;\n}\n"
	_, err = ApplyFile([]byte(drifted), set.Files[0])
	assert.ErrorIs(t, err, ErrContextMismatch)
}

func TestApplyFile_NoTrailingNewline(t *testing.T) {
	diff := "--- a/f.txt\n" +
		"+++ b/f.txt\n" +
		"@@ -1,2 +1,3 @@\n" +
		" alpha\n" +
		"-beta\n" +
		"\\ No newline at end of file\n" +
		"+beta\n" +
		"+gamma\n" +
		"\\ No newline at end of file\n"

	set, err := Parse(diff)
	require.NoError(t, err)

	got, err := ApplyFile([]byte("alpha\nbeta"), set.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\ngamma", string(got))
}

func TestApplyFile_UntouchedTailKeepsMissingNewline(t *testing.T) {
	diff := "--- a/f.txt\n" +
		"+++ b/f.txt\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-alpha\n" +
		"+ALPHA\n"

	set, err := Parse(diff)
	require.NoError(t, err)

	// The unterminated final line sits below the hunk; it must not gain a
	// newline.
	got, err := ApplyFile([]byte("alpha\nbeta"), set.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "ALPHA\nbeta", string(got))
}

func TestApplyFile_KeepsSourceTrailingNewline(t *testing.T) {
	diff := "--- a/f.txt\n" +
		"+++ b/f.txt\n" +
		"@@ -1,1 +1,2 @@\n" +
		" one\n" +
		"+two\n"

	set, err := Parse(diff)
	require.NoError(t, err)

	got, err := ApplyFile([]byte("one\nthree\n"), set.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(got))
}

func TestApplyTree_CreateAndDelete(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.txt"), []byte("gone\n"), 0o644))

	diff := "--- /dev/null\n" +
		"+++ b/sub/new.txt\n" +
		"@@ -0,0 +1,2 @@\n" +
		"+hello\n" +
		"+world\n" +
		"--- a/old.txt\n" +
		"+++ /dev/null\n" +
		"@@ -1,1 +0,0 @@\n" +
		"-gone\n"

	set, err := Parse(diff)
	require.NoError(t, err)
	require.Len(t, set.Files, 2)
	assert.True(t, set.Files[0].IsCreate())
	assert.True(t, set.Files[1].IsDelete())

	require.NoError(t, ApplyTree(root, set))

	created, err := os.ReadFile(filepath.Join(root, "sub", "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(created))

	_, err = os.Stat(filepath.Join(root, "old.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestApplyTree_MissingTarget(t *testing.T) {
	set, err := Parse(promoDiff)
	require.NoError(t, err)

	err = ApplyTree(t.TempDir(), set)
	assert.ErrorIs(t, err, ErrTargetMissing)
}

func TestApplyTree_EscapingTargetRejected(t *testing.T) {
	diff := "--- a/../escape.txt\n" +
		"+++ b/../escape.txt\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-x\n" +
		"+y\n"

	set, err := Parse(diff)
	require.NoError(t, err)

	err = ApplyTree(t.TempDir(), set)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_HunkLineCountMismatch(t *testing.T) {
	diff := "--- a/f.txt\n" +
		"+++ b/f.txt\n" +
		"@@ -1,3 +1,3 @@\n" +
		" only\n"

	_, err := Parse(diff)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_NoFileSections(t *testing.T) {
	_, err := Parse("just some prose\n")
	assert.ErrorIs(t, err, ErrMalformed)
}
