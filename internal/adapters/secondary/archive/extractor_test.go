package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
)

type tarEntry struct {
	name string
	body string
}

func writeArchive(t *testing.T, path string, entries []tarEntry) {
	t.Helper()

	var buf bytes.Buffer
	xzw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	tw := tar.NewWriter(xzw)

	for _, e := range entries {
		if e.body == "" && e.name[len(e.name)-1] == '/' {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name: e.name, Typeflag: tar.TypeDir, Mode: 0o755,
			}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: e.name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(e.body)),
		}))
		_, err := tw.Write([]byte(e.body))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, xzw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "chromium-1.2.3.4.tar.xz")
	writeArchive(t, archivePath, []tarEntry{
		{name: "chromium-1.2.3.4/"},
		{name: "chromium-1.2.3.4/build/util/LASTCHANGE", body: "LASTCHANGE=abc123def\n"},
		{name: "chromium-1.2.3.4/src/main.cc", body: "int main() {}\n"},
		{name: "chromium-1.2.3.4/third_party/blob.bin", body: "\x00\x01"},
	})

	root := filepath.Join(dir, "sandbox")
	e := NewExtractor()
	rev, err := e.Extract(context.Background(),
		&domain.SourceArchive{Version: "1.2.3.4", ArchivePath: archivePath},
		root,
		[]string{"third_party/blob.bin"},
	)
	require.NoError(t, err)
	assert.Equal(t, "abc123def", rev)

	data, err := os.ReadFile(filepath.Join(root, "src", "main.cc"))
	require.NoError(t, err)
	assert.Equal(t, "int main() {}\n", string(data))

	_, err = os.Stat(filepath.Join(root, "third_party", "blob.bin"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtract_MissingRevisionMarker(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "chromium-1.2.3.4.tar.xz")
	writeArchive(t, archivePath, []tarEntry{
		{name: "chromium-1.2.3.4/src/main.cc", body: "int main() {}\n"},
	})

	e := NewExtractor()
	_, err := e.Extract(context.Background(),
		&domain.SourceArchive{Version: "1.2.3.4", ArchivePath: archivePath},
		filepath.Join(dir, "sandbox"), nil)
	assert.ErrorIs(t, err, domain.ErrRevisionNotFound)
}

func TestExtract_EntriesOutsideVersionPrefixIgnored(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "chromium-1.2.3.4.tar.xz")
	writeArchive(t, archivePath, []tarEntry{
		{name: "pax_global_header", body: "ignored"},
		{name: "chromium-1.2.3.4/build/util/LASTCHANGE", body: "LASTCHANGE=r1\n"},
	})

	root := filepath.Join(dir, "sandbox")
	e := NewExtractor()
	rev, err := e.Extract(context.Background(),
		&domain.SourceArchive{Version: "1.2.3.4", ArchivePath: archivePath}, root, nil)
	require.NoError(t, err)
	assert.Equal(t, "r1", rev)

	_, err = os.Stat(filepath.Join(root, "pax_global_header"))
	assert.True(t, os.IsNotExist(err))
}
