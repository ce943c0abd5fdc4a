package pkgfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fxdian/ungoogled-chromium/internal/config"
	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

// Placeholder tokens substituted in metadata templates.
const (
	tokenPkgName  = "@@PKGNAME@@"
	tokenMenuName = "@@MENUNAME@@"
)

type artifact struct {
	src  string
	dest string
	mode os.FileMode
}

type installer struct {
	cfg          *config.PackageConfig
	resourcesDir string
}

func NewInstaller(cfg *config.PackageConfig, resourcesDir string) output.Packager {
	return &installer{cfg: cfg, resourcesDir: resourcesDir}
}

// Install assembles the package filesystem layout under the staging dest
// dir. Any failure removes the staging tree; a partial package is never
// left behind.
func (i *installer) Install(ctx context.Context, root, buildOut string, build *domain.Build) error {
	if err := i.install(ctx, root, buildOut); err != nil {
		i.discardStaging()
		return err
	}
	return nil
}

func (i *installer) install(ctx context.Context, root, buildOut string) error {
	out := filepath.Join(root, buildOut)
	libDir := filepath.Join(i.cfg.DestDir, "usr", "lib", i.cfg.Name)

	// The privilege-separation helper keeps its setuid bit; everything else
	// is a regular executable or a shared object.
	binaries := []artifact{
		{src: "chrome", dest: i.cfg.Name, mode: 0o755},
		{src: "chrome_sandbox", dest: "chrome-sandbox", mode: 0o755 | os.ModeSetuid},
		{src: "chromedriver", dest: "chromedriver", mode: 0o755},
		{src: "libffmpeg.so", dest: "libffmpeg.so", mode: 0o644},
	}
	for _, b := range binaries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copyFile(filepath.Join(out, b.src), filepath.Join(libDir, b.dest), b.mode); err != nil {
			return fmt.Errorf("install %s: %w", b.src, err)
		}
	}

	if err := i.installResourceBundles(out, libDir); err != nil {
		return err
	}
	if err := i.installLauncher(); err != nil {
		return err
	}
	if err := i.installMetadata(); err != nil {
		return err
	}
	return i.installLicenses(root)
}

func (i *installer) installResourceBundles(out, libDir string) error {
	paks, err := filepath.Glob(filepath.Join(out, "*.pak"))
	if err != nil {
		return err
	}
	for _, pak := range paks {
		if err := copyFile(pak, filepath.Join(libDir, filepath.Base(pak)), 0o644); err != nil {
			return fmt.Errorf("install %s: %w", filepath.Base(pak), err)
		}
	}

	locales, err := filepath.Glob(filepath.Join(out, "locales", "*.pak"))
	if err != nil {
		return err
	}
	for _, pak := range locales {
		if err := copyFile(pak, filepath.Join(libDir, "locales", filepath.Base(pak)), 0o644); err != nil {
			return fmt.Errorf("install locale %s: %w", filepath.Base(pak), err)
		}
	}

	// The locale data blob ships with the package only when the build was
	// not configured against the system copy.
	if !i.cfg.SystemICU {
		if err := copyFile(filepath.Join(out, "icudtl.dat"), filepath.Join(libDir, "icudtl.dat"), 0o644); err != nil {
			return fmt.Errorf("install icudtl.dat: %w", err)
		}
	} else {
		log.Debug("system ICU configured, skipping bundled locale data")
	}
	return nil
}

func (i *installer) installLauncher() error {
	binDir := filepath.Join(i.cfg.DestDir, "usr", "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	link := filepath.Join(binDir, i.cfg.Name)
	os.Remove(link)
	target := filepath.Join("..", "lib", i.cfg.Name, i.cfg.Name)
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("install launcher symlink: %w", err)
	}
	return nil
}

func (i *installer) installMetadata() error {
	entries := []artifact{
		{src: "metadata/browser.desktop.in",
			dest: filepath.Join("usr", "share", "applications", i.cfg.Name+".desktop"), mode: 0o644},
		{src: "metadata/browser.1.in",
			dest: filepath.Join("usr", "share", "man", "man1", i.cfg.Name+".1"), mode: 0o644},
	}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(i.resourcesDir, filepath.FromSlash(e.src)))
		if err != nil {
			return fmt.Errorf("read metadata template %s: %w", e.src, err)
		}
		content := strings.ReplaceAll(string(data), tokenPkgName, i.cfg.Name)
		content = strings.ReplaceAll(content, tokenMenuName, i.cfg.MenuName)

		dest := filepath.Join(i.cfg.DestDir, e.dest)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, []byte(content), e.mode); err != nil {
			return fmt.Errorf("install metadata %s: %w", e.dest, err)
		}
	}
	return nil
}

func (i *installer) installLicenses(root string) error {
	dest := filepath.Join(i.cfg.DestDir, "usr", "share", "licenses", i.cfg.Name, "LICENSE")
	if err := copyFile(filepath.Join(root, "LICENSE"), dest, 0o644); err != nil {
		return fmt.Errorf("install license: %w", err)
	}
	return nil
}

func (i *installer) discardStaging() {
	dest := filepath.Clean(i.cfg.DestDir)
	if dest == "" || dest == "/" || dest == "." {
		return
	}
	if err := os.RemoveAll(dest); err != nil {
		log.WithError(err).Warn("failed to discard staging dir")
	}
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile honors umask; the sandbox helper's setuid bit must survive.
	return os.Chmod(dest, mode)
}
