package listfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaning_list")
	content := "# dropped during extraction\n" +
		"\n" +
		"third_party/widevine/cdm/widevine_cdm_common.h\n" +
		"  tools/traffic_annotation/bin/auditor  \n" +
		"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"third_party/widevine/cdm/widevine_cdm_common.h",
		"tools/traffic_annotation/bin/auditor",
	}, lines)
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent"))
	assert.True(t, os.IsNotExist(err))
}
