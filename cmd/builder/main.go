// Command builder runs the fetch-to-package pipeline once on the local
// host, without the HTTP API or a database. It is the entrypoint baked
// into the remote builder image.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/archive"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/fetch"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/patcher"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/pkgfs"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/sourcetree"
	"github.com/fxdian/ungoogled-chromium/internal/adapters/secondary/toolchain"
	"github.com/fxdian/ungoogled-chromium/internal/config"
	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
	"github.com/fxdian/ungoogled-chromium/internal/core/services"
)

func main() {
	version := flag.String("version", "", "chromium version to build (required)")
	release := flag.Int("release", 0, "package release number (default from PACKAGE_RELEASE)")
	flag.Parse()

	if *version == "" {
		fmt.Fprintln(os.Stderr, "usage: builder -version <chromium version> [-release <n>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *release > 0 {
		cfg.Package.Release = *release
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	store := newLocalStore()
	pipeline := services.NewPipelineService(
		store, nil,
		fetch.NewClient(&cfg.Source),
		archive.NewExtractor(),
		patcher.NewApplier(),
		sourcetree.NewNormalizer(cfg.Sandbox.ResourcesDir, cfg.Toolchain.Python),
		toolchain.New(&cfg.Toolchain, cfg.Sandbox.ResourcesDir),
		pkgfs.NewInstaller(&cfg.Package, cfg.Sandbox.ResourcesDir),
		cfg.Sandbox,
	)

	now := time.Now()
	build := &domain.Build{
		ID:              uuid.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
		ChromiumVersion: *version,
		PackageRelease:  cfg.Package.Release,
		Status:          domain.BuildStatusPending,
	}
	if err := store.Create(context.Background(), build); err != nil {
		log.Fatalf("create build: %v", err)
	}

	color.Cyan("building chromium %s (release %d)", build.ChromiumVersion, build.PackageRelease)

	if err := pipeline.Run(context.Background(), build.ID); err != nil {
		color.Red("build failed: %v", err)
		os.Exit(1)
	}

	color.Green("build %s succeeded (revision %s)", build.ID, build.UpstreamRevision)
}

// localStore keeps the single build of this process in memory so the
// pipeline can record progress without a database. Stage transitions are
// echoed to the terminal.
type localStore struct {
	builds map[uuid.UUID]*domain.Build
}

func newLocalStore() *localStore {
	return &localStore{builds: make(map[uuid.UUID]*domain.Build)}
}

func (s *localStore) Create(_ context.Context, build *domain.Build) error {
	s.builds[build.ID] = build
	return nil
}

func (s *localStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Build, error) {
	build, ok := s.builds[id]
	if !ok {
		return nil, domain.ErrBuildNotFound
	}
	return build, nil
}

func (s *localStore) Update(_ context.Context, build *domain.Build) error {
	s.builds[build.ID] = build
	return nil
}

func (s *localStore) List(_ context.Context, _ output.BuildListFilter) ([]*domain.Build, int, error) {
	return nil, 0, nil
}

func (s *localStore) CreateStage(_ context.Context, stage *domain.StageResult) error {
	fmt.Printf("%s %s\n", color.CyanString("==>"), stage.Stage)
	return nil
}

func (s *localStore) UpdateStage(_ context.Context, stage *domain.StageResult) error {
	switch stage.Status {
	case domain.StageStatusSucceeded:
		if stage.Message != "" {
			fmt.Printf("%s %s: %s\n", color.GreenString("ok"), stage.Stage, stage.Message)
		} else {
			fmt.Printf("%s %s\n", color.GreenString("ok"), stage.Stage)
		}
	case domain.StageStatusFailed:
		fmt.Printf("%s %s: %s\n", color.RedString("FAIL"), stage.Stage, stage.Message)
	}
	return nil
}

func (s *localStore) ListStages(_ context.Context, _ uuid.UUID) ([]*domain.StageResult, error) {
	return nil, nil
}

func (s *localStore) CountUnfinishedByPatchSet(_ context.Context, _ uuid.UUID) (int, error) {
	return 0, nil
}
