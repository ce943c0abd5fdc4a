package sourcetree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupResources(t *testing.T, flags, libs string) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "flags_strip_list"), flags)
	writeTestFile(t, filepath.Join(dir, "unbundle_list"), libs)
	return dir
}

func TestNormalize_StripsFlags(t *testing.T) {
	resources := setupResources(t, "-mretpoline\n", "")
	root := t.TempDir()
	gni := filepath.Join(root, "build", "config", "compiler", "BUILD.gn")
	writeTestFile(t, gni, `cflags = [
  "-mretpoline",
  "-O2",
]
`)

	n := NewNormalizer(resources, "")
	require.NoError(t, n.Normalize(context.Background(), root))

	data, err := os.ReadFile(gni)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "-mretpoline")
	assert.Contains(t, string(data), "-O2")
}

func TestNormalize_RewritesShebangs(t *testing.T) {
	resources := setupResources(t, "", "")
	root := t.TempDir()
	script := filepath.Join(root, "build", "gn_run.py")
	writeTestFile(t, script, "#!/usr/bin/env python\nprint('hi')\n")
	plain := filepath.Join(root, "build", "helper.py")
	writeTestFile(t, plain, "print('no shebang')\n")

	n := NewNormalizer(resources, "/usr/bin/python3")
	require.NoError(t, n.Normalize(context.Background(), root))

	data, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, "#!/usr/bin/python3\nprint('hi')\n", string(data))

	data, err = os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "print('no shebang')\n", string(data))
}

func TestNormalize_PrunesVendoredSources(t *testing.T) {
	resources := setupResources(t, "", "zlib\n")
	root := t.TempDir()
	lib := filepath.Join(root, "third_party", "zlib")
	writeTestFile(t, filepath.Join(lib, "inflate.c"), "int x;")
	writeTestFile(t, filepath.Join(lib, "BUILD.gn"), "config {}")
	writeTestFile(t, filepath.Join(lib, "LICENSE"), "zlib license")
	writeTestFile(t, filepath.Join(lib, "chromium", "shim.h"), "// shim")

	n := NewNormalizer(resources, "")
	require.NoError(t, n.Normalize(context.Background(), root))

	_, err := os.Stat(filepath.Join(lib, "inflate.c"))
	assert.True(t, os.IsNotExist(err))
	for _, keep := range []string{"BUILD.gn", "LICENSE", filepath.Join("chromium", "shim.h")} {
		_, err := os.Stat(filepath.Join(lib, keep))
		assert.NoError(t, err, keep)
	}
}

func TestNormalize_SubstitutesDomains(t *testing.T) {
	resources := setupResources(t, "", "")
	writeTestFile(t, filepath.Join(resources, "domain_regex_list"),
		"[a-zA-Z0-9\\-]*\\.googleapis\\.com#9oo91eapis.qjz9zk\n"+
			"[a-zA-Z0-9\\-\\.]*\\.google\\.com#9oo91e.qjz9zk\n")
	writeTestFile(t, filepath.Join(resources, "domain_substitution_list"),
		"google_apis/gaia/gaia_urls.cc\n")

	root := t.TempDir()
	target := filepath.Join(root, "google_apis", "gaia", "gaia_urls.cc")
	writeTestFile(t, target,
		`const char kGaiaUrl[] = "https://accounts.google.com";`+"\n"+
			`const char kApiUrl[] = "https://www.googleapis.com/auth";`+"\n")

	n := NewNormalizer(resources, "")
	require.NoError(t, n.Normalize(context.Background(), root))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t,
		`const char kGaiaUrl[] = "https://9oo91e.qjz9zk";`+"\n"+
			`const char kApiUrl[] = "https://9oo91eapis.qjz9zk/auth";`+"\n",
		string(data))
}

func TestNormalize_DomainSubstitutionListedFileMissing(t *testing.T) {
	resources := setupResources(t, "", "")
	writeTestFile(t, filepath.Join(resources, "domain_regex_list"),
		"example\\.com#ex8mp1e.qjz9zk\n")
	writeTestFile(t, filepath.Join(resources, "domain_substitution_list"),
		"chrome/not/in/tree.cc\n")

	n := NewNormalizer(resources, "")
	err := n.Normalize(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain substitution")
}

func TestNormalize_NoDomainListsIsNoop(t *testing.T) {
	resources := setupResources(t, "", "")
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "README"), "plain tree\n")

	n := NewNormalizer(resources, "")
	assert.NoError(t, n.Normalize(context.Background(), root))
}

func TestNormalize_MissingUnbundledLibraryTolerated(t *testing.T) {
	resources := setupResources(t, "", "notthere\n")
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build", "config"), 0o755))

	n := NewNormalizer(resources, "")
	assert.NoError(t, n.Normalize(context.Background(), root))
}
