package sourcetree

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fxdian/ungoogled-chromium/internal/listfile"
)

// domainRule is one line of domain_regex_list: a pattern and the replacement
// it rewrites matches to, separated by the first '#'.
type domainRule struct {
	pattern     *regexp.Regexp
	replacement []byte
}

func loadDomainRules(path string) ([]domainRule, error) {
	lines, err := listfile.Read(path)
	if err != nil {
		return nil, err
	}
	rules := make([]domainRule, 0, len(lines))
	for _, line := range lines {
		pattern, replacement, ok := strings.Cut(line, "#")
		if !ok {
			return nil, fmt.Errorf("domain regex %q has no replacement", line)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile domain regex %q: %w", pattern, err)
		}
		rules = append(rules, domainRule{pattern: re, replacement: []byte(replacement)})
	}
	return rules, nil
}

// substituteDomains rewrites vendor domains in every file on the
// substitution list so nothing in the tree resolves to a live service host.
// Both resource lists are optional; without them the step is a no-op.
func (n *normalizer) substituteDomains(ctx context.Context, root string) error {
	rules, err := loadDomainRules(filepath.Join(n.resourcesDir, "domain_regex_list"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read domain regex list: %w", err)
	}
	files, err := listfile.Read(filepath.Join(n.resourcesDir, "domain_substitution_list"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read domain substitution list: %w", err)
	}

	for _, rel := range files {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("domain substitution: %w", err)
		}
		out := data
		for _, rule := range rules {
			out = rule.pattern.ReplaceAll(out, rule.replacement)
		}
		if bytes.Equal(out, data) {
			// A listed file with no matches usually means the list has
			// drifted from the tree.
			log.WithField("file", rel).Warn("domain substitution list entry has no matches")
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
			return fmt.Errorf("domain substitution: write %s: %w", rel, err)
		}
	}
	return nil
}
