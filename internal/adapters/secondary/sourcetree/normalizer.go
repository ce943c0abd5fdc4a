package sourcetree

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"

	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
	"github.com/fxdian/ungoogled-chromium/internal/listfile"
)

// keepGlobs are the sub-paths preserved inside an unbundled third_party
// library: first-party override directories and build description files.
var keepGlobs = []string{
	"chromium/**",
	"google/**",
	"**/*.gn",
	"**/*.gni",
	"**/*.isolate",
	"**/LICENSE*",
	"OWNERS",
}

// shebangs rewritten to the configured interpreter.
var shebangPrefixes = []string{
	"#!/usr/bin/env python",
	"#!/usr/bin/python",
}

type normalizer struct {
	resourcesDir string
	interpreter  string
}

// NewNormalizer creates the tree normalizer. resourcesDir must contain
// flags_strip_list (compiler flags to drop) and unbundle_list (third_party
// directories satisfied by system libraries); domain_regex_list and
// domain_substitution_list (vendor domain rewriting) are honored when
// present.
func NewNormalizer(resourcesDir, interpreter string) output.TreeNormalizer {
	return &normalizer{resourcesDir: resourcesDir, interpreter: interpreter}
}

func (n *normalizer) Normalize(ctx context.Context, root string) error {
	flags, err := listfile.Read(filepath.Join(n.resourcesDir, "flags_strip_list"))
	if err != nil {
		return fmt.Errorf("read flags strip list: %w", err)
	}
	libs, err := listfile.Read(filepath.Join(n.resourcesDir, "unbundle_list"))
	if err != nil {
		return fmt.Errorf("read unbundle list: %w", err)
	}

	if err := n.substituteDomains(ctx, root); err != nil {
		return err
	}
	if err := n.stripFlags(ctx, root, flags); err != nil {
		return err
	}
	if err := n.substituteInterpreters(ctx, root); err != nil {
		return err
	}
	return n.pruneVendored(ctx, root, libs)
}

// stripFlags removes unsupported warning-suppression flags from the build
// description files under build/config.
func (n *normalizer) stripFlags(ctx context.Context, root string, flags []string) error {
	if len(flags) == 0 {
		return nil
	}
	configDir := filepath.Join(root, "build", "config")
	return filepath.WalkDir(configDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() || (!strings.HasSuffix(path, ".gn") && !strings.HasSuffix(path, ".gni")) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(data)
		changed := false
		for _, flag := range flags {
			for _, form := range []string{`"` + flag + `",`, `"` + flag + `"`} {
				if strings.Contains(content, form) {
					content = strings.ReplaceAll(content, form, "")
					changed = true
				}
			}
		}
		if !changed {
			return nil
		}
		log.WithField("file", path).Debug("stripped unsupported compiler flags")
		return os.WriteFile(path, []byte(content), fileMode(d))
	})
}

// substituteInterpreters rewrites script shebangs to the configured
// interpreter so the build never depends on the host's search path.
func (n *normalizer) substituteInterpreters(ctx context.Context, root string) error {
	if n.interpreter == "" {
		return nil
	}
	return filepath.WalkDir(filepath.Join(root, "build"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".py") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		idx := strings.IndexByte(string(data), '\n')
		if idx < 0 {
			return nil
		}
		first := string(data[:idx])
		for _, prefix := range shebangPrefixes {
			if strings.HasPrefix(first, prefix) {
				rest := data[idx:]
				return os.WriteFile(path, append([]byte("#!"+n.interpreter), rest...), fileMode(d))
			}
		}
		return nil
	})
}

// pruneVendored deletes vendor-bundled library sources that system packages
// replace, keeping only allowlisted sub-paths.
func (n *normalizer) pruneVendored(ctx context.Context, root string, libs []string) error {
	for _, lib := range libs {
		libRoot := filepath.Join(root, "third_party", lib)
		if _, err := os.Stat(libRoot); os.IsNotExist(err) {
			log.WithField("library", lib).Warn("unbundle list entry not present in tree")
			continue
		}
		err := filepath.WalkDir(libRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(libRoot, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			for _, glob := range keepGlobs {
				if ok, _ := doublestar.Match(glob, rel); ok {
					return nil
				}
			}
			return os.Remove(path)
		})
		if err != nil {
			return fmt.Errorf("prune third_party/%s: %w", lib, err)
		}
	}
	return nil
}

func fileMode(d fs.DirEntry) os.FileMode {
	if info, err := d.Info(); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
