package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

// revisionFile carries the upstream commit the tarball was cut from, as
// "LASTCHANGE=<revision>".
const revisionFile = "build/util/LASTCHANGE"

type extractor struct{}

func NewExtractor() output.SandboxExtractor {
	return &extractor{}
}

// Extract unpacks archive into root, dropping entries named in cleaning.
// Entries live under a chromium-<version>/ top directory which is stripped.
func (e *extractor) Extract(ctx context.Context, archive *domain.SourceArchive, root string, cleaning []string) (string, error) {
	f, err := os.Open(archive.ArchivePath)
	if err != nil {
		return "", fmt.Errorf("open source archive: %w", err)
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("open xz stream: %w", err)
	}
	tr := tar.NewReader(xzr)

	prefix := fmt.Sprintf("chromium-%s/", archive.Version)
	skip := make(map[string]bool, len(cleaning))
	for _, p := range cleaning {
		skip[p] = true
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read source archive: %w", err)
		}

		name := strings.TrimPrefix(hdr.Name, prefix)
		if name == hdr.Name {
			// pax headers and the bare top directory are not tree content.
			continue
		}
		if name == "" || skip[strings.TrimSuffix(name, "/")] {
			if skip[strings.TrimSuffix(name, "/")] {
				delete(skip, strings.TrimSuffix(name, "/"))
			}
			continue
		}
		if err := writeEntry(root, name, hdr, tr); err != nil {
			return "", fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
	}

	for p := range skip {
		log.WithField("path", p).Warn("cleaning list entry not present in archive")
	}

	return readRevision(root)
}

func writeEntry(root, name string, hdr *tar.Header, r io.Reader) error {
	if strings.HasPrefix(name, "..") || strings.Contains(name, "/../") {
		return fmt.Errorf("entry escapes extraction root")
	}
	dest := filepath.Join(root, filepath.FromSlash(name))

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(dest, 0o755)
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		os.Remove(dest)
		return os.Symlink(hdr.Linkname, dest)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return nil
	}
}

func readRevision(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(revisionFile)))
	if err != nil {
		return "", domain.ErrRevisionNotFound
	}
	line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	rev, ok := strings.CutPrefix(line, "LASTCHANGE=")
	if !ok || rev == "" {
		return "", domain.ErrRevisionNotFound
	}
	return rev, nil
}
