package fetch

import (
	"bufio"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"

	"github.com/fxdian/ungoogled-chromium/internal/config"
	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

type client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient creates the source fetcher adapter. Downloads retry with
// backoff; checksum verification never retries a mismatch.
func NewClient(cfg *config.SourceConfig) output.SourceFetcher {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Retries
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil

	return &client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    rc,
	}
}

func (c *client) FetchArchive(ctx context.Context, version, destDir string) (*domain.SourceArchive, error) {
	if version == "" {
		return nil, domain.ErrInvalidChromiumVersion
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	name := fmt.Sprintf("chromium-%s.tar.xz", version)
	archive := &domain.SourceArchive{
		Version:     version,
		ArchivePath: filepath.Join(destDir, name),
		HashesPath:  filepath.Join(destDir, name+".hashes"),
	}

	if err := c.download(ctx, c.baseURL+"/"+name, archive.ArchivePath); err != nil {
		return nil, fmt.Errorf("fetch source archive: %w", err)
	}
	if err := c.download(ctx, c.baseURL+"/"+name+".hashes", archive.HashesPath); err != nil {
		return nil, fmt.Errorf("fetch source hashes: %w", err)
	}
	return archive, nil
}

// download reuses an existing file; the checksum gate decides whether a
// stale copy is acceptable.
func (c *client) download(ctx context.Context, url, dest string) error {
	if fi, err := os.Stat(dest); err == nil && fi.Mode().IsRegular() && fi.Size() > 0 {
		log.WithField("path", dest).Debug("download target exists, skipping")
		return nil
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

func (c *client) Verify(ctx context.Context, archive *domain.SourceArchive) error {
	f, err := os.Open(archive.HashesPath)
	if err != nil {
		return fmt.Errorf("open hashes file: %w", err)
	}
	defer f.Close()

	verified := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		algo, want := strings.ToLower(fields[0]), strings.ToLower(fields[1])

		h := newHasher(algo)
		if h == nil {
			log.WithField("algorithm", algo).Warn("hash algorithm not available, skipping")
			continue
		}
		got, err := fileDigest(archive.ArchivePath, h)
		if err != nil {
			return fmt.Errorf("hash source archive: %w", err)
		}
		if got != want {
			return fmt.Errorf("%s digest %s does not match pinned %s: %w",
				algo, got, want, domain.ErrChecksumMismatch)
		}
		verified++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read hashes file: %w", err)
	}
	if verified == 0 {
		return fmt.Errorf("no usable hash in %s: %w", archive.HashesPath, domain.ErrChecksumMismatch)
	}

	archive.Verified = true
	return nil
}

func newHasher(algo string) hash.Hash {
	switch algo {
	case "sha256":
		return sha256.New()
	case "sha512":
		return sha512.New()
	case "sha1":
		return sha1.New()
	}
	return nil
}

func fileDigest(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
