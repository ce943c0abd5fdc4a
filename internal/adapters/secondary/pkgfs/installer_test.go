package pkgfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxdian/ungoogled-chromium/internal/config"
	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupTree(t *testing.T) (root string, resources string) {
	t.Helper()
	root = t.TempDir()
	out := filepath.Join(root, "out", "Release")
	for _, name := range []string{"chrome", "chrome_sandbox", "chromedriver", "libffmpeg.so", "icudtl.dat"} {
		writeTestFile(t, filepath.Join(out, name), name)
	}
	writeTestFile(t, filepath.Join(out, "resources.pak"), "pak")
	writeTestFile(t, filepath.Join(out, "locales", "en-US.pak"), "pak")
	writeTestFile(t, filepath.Join(root, "LICENSE"), "BSD")

	resources = t.TempDir()
	writeTestFile(t, filepath.Join(resources, "metadata", "browser.desktop.in"),
		"Name=@@MENUNAME@@\nExec=/usr/bin/@@PKGNAME@@ %U\n")
	writeTestFile(t, filepath.Join(resources, "metadata", "browser.1.in"),
		".TH @@PKGNAME@@ 1\n")
	return root, resources
}

func TestInstall(t *testing.T) {
	root, resources := setupTree(t)
	destDir := filepath.Join(t.TempDir(), "staging")
	cfg := &config.PackageConfig{
		Name:     "ungoogled-chromium",
		MenuName: "Ungoogled Chromium",
		Release:  1,
		DestDir:  destDir,
	}

	inst := NewInstaller(cfg, resources)
	require.NoError(t, inst.Install(context.Background(), root, "out/Release", &domain.Build{}))

	libDir := filepath.Join(destDir, "usr", "lib", "ungoogled-chromium")
	for _, name := range []string{"ungoogled-chromium", "chrome-sandbox", "chromedriver", "libffmpeg.so", "resources.pak", "icudtl.dat"} {
		_, err := os.Stat(filepath.Join(libDir, name))
		assert.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(libDir, "locales", "en-US.pak"))
	assert.NoError(t, err)

	fi, err := os.Stat(filepath.Join(libDir, "chrome-sandbox"))
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSetuid, "sandbox helper must keep its setuid bit")
	assert.Equal(t, os.FileMode(0o755), fi.Mode().Perm())

	link, err := os.Readlink(filepath.Join(destDir, "usr", "bin", "ungoogled-chromium"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "lib", "ungoogled-chromium", "ungoogled-chromium"), link)

	desktop, err := os.ReadFile(filepath.Join(destDir, "usr", "share", "applications", "ungoogled-chromium.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(desktop), "Name=Ungoogled Chromium")
	assert.Contains(t, string(desktop), "Exec=/usr/bin/ungoogled-chromium %U")
	assert.NotContains(t, string(desktop), "@@")

	license, err := os.ReadFile(filepath.Join(destDir, "usr", "share", "licenses", "ungoogled-chromium", "LICENSE"))
	require.NoError(t, err)
	assert.Equal(t, "BSD", string(license))
}

func TestInstall_SystemICUSkipsLocaleData(t *testing.T) {
	root, resources := setupTree(t)
	require.NoError(t, os.Remove(filepath.Join(root, "out", "Release", "icudtl.dat")))

	destDir := filepath.Join(t.TempDir(), "staging")
	cfg := &config.PackageConfig{Name: "ungoogled-chromium", MenuName: "Ungoogled Chromium", DestDir: destDir, SystemICU: true}

	inst := NewInstaller(cfg, resources)
	require.NoError(t, inst.Install(context.Background(), root, "out/Release", &domain.Build{}))

	_, err := os.Stat(filepath.Join(destDir, "usr", "lib", "ungoogled-chromium", "icudtl.dat"))
	assert.True(t, os.IsNotExist(err))
}

func TestInstall_MissingArtifactDiscardsStaging(t *testing.T) {
	root, resources := setupTree(t)
	require.NoError(t, os.Remove(filepath.Join(root, "out", "Release", "chrome")))

	destDir := filepath.Join(t.TempDir(), "staging")
	cfg := &config.PackageConfig{Name: "ungoogled-chromium", MenuName: "Ungoogled Chromium", DestDir: destDir}

	inst := NewInstaller(cfg, resources)
	err := inst.Install(context.Background(), root, "out/Release", &domain.Build{})
	assert.Error(t, err)

	_, err = os.Stat(destDir)
	assert.True(t, os.IsNotExist(err))
}
