package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/fxdian/ungoogled-chromium/internal/config"
	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

type tool struct {
	cfg          *config.ToolchainConfig
	resourcesDir string
}

// New creates the gn/ninja adapter. Compiler, archiver and symbol-table
// tool selection travels via the child process environment.
func New(cfg *config.ToolchainConfig, resourcesDir string) output.Toolchain {
	return &tool{cfg: cfg, resourcesDir: resourcesDir}
}

// Configure writes args.gn from the declarative flag set and runs gn gen.
func (t *tool) Configure(ctx context.Context, root, buildOut string) error {
	if err := t.writeArgs(root, buildOut); err != nil {
		return err
	}
	return t.run(ctx, root, t.cfg.GN, "gen", buildOut)
}

// Compile invokes ninja for the named targets. Parallelism is ninja's; the
// jobs setting is passed through untouched.
func (t *tool) Compile(ctx context.Context, root, buildOut string, targets []string) error {
	args := []string{"-C", buildOut}
	if t.cfg.Jobs > 0 {
		args = append(args, "-j", strconv.Itoa(t.cfg.Jobs))
	}
	args = append(args, targets...)
	return t.run(ctx, root, t.cfg.Ninja, args...)
}

func (t *tool) writeArgs(root, buildOut string) error {
	v := viper.New()
	v.SetConfigFile(filepath.Join(t.resourcesDir, "gn_args.ini"))
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read gn args: %w", err)
	}

	outDir := filepath.Join(root, buildOut)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create build output dir: %w", err)
	}

	var b strings.Builder
	for _, imp := range sortedValues(v.GetStringMapString("imports")) {
		fmt.Fprintf(&b, "import(%q)\n", imp)
	}
	flags := v.GetStringMapString("global")
	for _, key := range sortedKeys(flags) {
		fmt.Fprintf(&b, "%s=%s\n", key, gnValue(flags[key]))
	}
	return os.WriteFile(filepath.Join(outDir, "args.gn"), []byte(b.String()), 0o644)
}

func (t *tool) run(ctx context.Context, root, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = root
	cmd.Env = t.childEnv()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.WithFields(log.Fields{"command": name, "args": strings.Join(args, " ")}).Info("running build tool")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %v: %w", name, strings.Join(args, " "), err, domain.ErrBuildToolFailed)
	}
	return nil
}

func (t *tool) childEnv() []string {
	env := os.Environ()
	for key, val := range map[string]string{
		"CC":     t.cfg.CC,
		"CXX":    t.cfg.CXX,
		"AR":     t.cfg.AR,
		"NM":     t.cfg.NM,
		"TMPDIR": t.cfg.TmpDir,
	} {
		if val != "" {
			env = append(env, key+"="+val)
		}
	}
	if t.cfg.ShimPath != "" {
		env = append(env, "PATH="+t.cfg.ShimPath+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	return env
}

// gnValue requotes string flags; the ini reader strips their quotes.
func gnValue(s string) string {
	switch s {
	case "true", "false":
		return s
	}
	if _, err := strconv.Atoi(s); err == nil {
		return s
	}
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s
	}
	return strconv.Quote(s)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedValues(m map[string]string) []string {
	vals := make([]string, 0, len(m))
	for _, v := range m {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return vals
}
