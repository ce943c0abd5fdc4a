package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fxdian/ungoogled-chromium/internal/config"
	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
	"github.com/fxdian/ungoogled-chromium/internal/listfile"
)

// CompileTargets are the artifacts every build produces: the browser, the
// privilege-separation helper, the automation driver and the codec adapter.
var CompileTargets = []string{"chrome", "chrome_sandbox", "chromedriver", "libffmpeg.so"}

type PipelineService struct {
	builds     output.BuildRepository
	patchSets  output.PatchSetRepository
	fetcher    output.SourceFetcher
	extractor  output.SandboxExtractor
	patcher    output.PatchApplier
	normalizer output.TreeNormalizer
	toolchain  output.Toolchain
	packager   output.Packager
	sandbox    config.SandboxConfig
}

func NewPipelineService(
	builds output.BuildRepository,
	patchSets output.PatchSetRepository,
	fetcher output.SourceFetcher,
	extractor output.SandboxExtractor,
	patcher output.PatchApplier,
	normalizer output.TreeNormalizer,
	toolchain output.Toolchain,
	packager output.Packager,
	sandbox config.SandboxConfig,
) *PipelineService {
	return &PipelineService{
		builds:     builds,
		patchSets:  patchSets,
		fetcher:    fetcher,
		extractor:  extractor,
		patcher:    patcher,
		normalizer: normalizer,
		toolchain:  toolchain,
		packager:   packager,
		sandbox:    sandbox,
	}
}

// Run executes the pipeline for a pending build. Stages run strictly in
// sequence, none retries, and the first failure marks the build FAILED
// without running anything after it.
func (s *PipelineService) Run(ctx context.Context, buildID uuid.UUID) error {
	build, err := s.builds.GetByID(ctx, buildID)
	if err != nil {
		return err
	}
	if build.Status != domain.BuildStatusPending {
		return domain.ErrBuildNotPending
	}

	build.Status = domain.BuildStatusRunning
	build.SandboxPath = filepath.Join(s.sandbox.Root, build.ID.String())
	build.UpdatedAt = time.Now()
	if err := s.builds.Update(ctx, build); err != nil {
		return err
	}

	var archive *domain.SourceArchive

	// 1. Fetch the pinned source archive and its hashes file
	if err := s.runStage(ctx, build, domain.StageFetch, func(ctx context.Context) (string, error) {
		archive, err = s.fetcher.FetchArchive(ctx, build.ChromiumVersion, s.sandbox.DownloadDir)
		if err != nil {
			return "", err
		}
		return archive.ArchivePath, nil
	}); err != nil {
		return err
	}

	// 2. Integrity-check before anything touches the tree
	if err := s.runStage(ctx, build, domain.StageVerify, func(ctx context.Context) (string, error) {
		return "", s.fetcher.Verify(ctx, archive)
	}); err != nil {
		return err
	}

	// 3. Extract into the sandbox, honoring the cleaning list, and locate
	//    the upstream revision marker
	if err := s.runStage(ctx, build, domain.StageExtract, func(ctx context.Context) (string, error) {
		cleaning, err := listfile.Read(filepath.Join(s.sandbox.ResourcesDir, "cleaning_list"))
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("read cleaning list: %w", err)
		}
		revision, err := s.extractor.Extract(ctx, archive, build.SandboxPath, cleaning)
		if err != nil {
			return "", err
		}
		build.UpstreamRevision = revision
		return revision, nil
	}); err != nil {
		return err
	}

	// 4. Apply the patch series in order
	if err := s.runStage(ctx, build, domain.StagePatch, func(ctx context.Context) (string, error) {
		patches, err := s.resolvePatches(ctx, build)
		if err != nil {
			return "", err
		}
		if err := s.patcher.ApplySeries(ctx, build.SandboxPath, patches); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d patches applied", len(patches)), nil
	}); err != nil {
		return err
	}

	// 5. Normalize the tree: rewrite vendor domains, strip unsupported
	//    toolchain flags and prune vendored libraries
	if err := s.runStage(ctx, build, domain.StageNormalize, func(ctx context.Context) (string, error) {
		return "", s.normalizer.Normalize(ctx, build.SandboxPath)
	}); err != nil {
		return err
	}

	// 6. Generate build files from the declarative flag set
	if err := s.runStage(ctx, build, domain.StageConfigure, func(ctx context.Context) (string, error) {
		return "", s.toolchain.Configure(ctx, build.SandboxPath, s.sandbox.BuildOutput)
	}); err != nil {
		return err
	}

	// 7. Compile the fixed artifact set
	if err := s.runStage(ctx, build, domain.StageCompile, func(ctx context.Context) (string, error) {
		return "", s.toolchain.Compile(ctx, build.SandboxPath, s.sandbox.BuildOutput, CompileTargets)
	}); err != nil {
		return err
	}

	// 8. Assemble the package filesystem layout
	if err := s.runStage(ctx, build, domain.StagePackage, func(ctx context.Context) (string, error) {
		return "", s.packager.Install(ctx, build.SandboxPath, s.sandbox.BuildOutput, build)
	}); err != nil {
		return err
	}

	if err := s.checkCancelled(ctx, build, "finish"); err != nil {
		return err
	}
	build.Status = domain.BuildStatusSucceeded
	build.UpdatedAt = time.Now()
	if err := s.builds.Update(ctx, build); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"build":    build.ID,
		"version":  build.ChromiumVersion,
		"revision": build.UpstreamRevision,
	}).Info("build succeeded")
	return nil
}

// resolvePatches loads the series from the build's patch set, falling back
// to the on-disk resources series.
func (s *PipelineService) resolvePatches(ctx context.Context, build *domain.Build) ([]domain.Patch, error) {
	if build.PatchSetID != nil {
		set, err := s.patchSets.GetByID(ctx, *build.PatchSetID)
		if err != nil {
			return nil, err
		}
		return set.Patches, nil
	}

	patchDir := filepath.Join(s.sandbox.ResourcesDir, "patches")
	series, err := listfile.Read(filepath.Join(patchDir, "series"))
	if err != nil {
		return nil, fmt.Errorf("read patch series: %w", err)
	}
	patches := make([]domain.Patch, 0, len(series))
	for i, name := range series {
		body, err := os.ReadFile(filepath.Join(patchDir, name))
		if err != nil {
			return nil, fmt.Errorf("read patch %s: %w", name, err)
		}
		patches = append(patches, domain.Patch{
			Position: i + 1,
			FileName: name,
			Body:     string(body),
		})
	}
	return patches, nil
}

// checkCancelled re-reads the build row so a concurrent Cancel is seen at the
// next stage boundary instead of being overwritten by the pipeline's stale
// in-memory copy.
func (s *PipelineService) checkCancelled(ctx context.Context, build *domain.Build, at string) error {
	current, err := s.builds.GetByID(ctx, build.ID)
	if err != nil {
		return err
	}
	if current.Status == domain.BuildStatusCancelled {
		log.WithFields(log.Fields{"build": build.ID, "at": at}).Info("build cancelled, stopping pipeline")
		return domain.ErrBuildCancelled
	}
	return nil
}

func (s *PipelineService) runStage(ctx context.Context, build *domain.Build, stage domain.Stage, fn func(context.Context) (string, error)) error {
	if err := s.checkCancelled(ctx, build, string(stage)); err != nil {
		return err
	}

	now := time.Now()
	build.CurrentStage = stage
	build.UpdatedAt = now
	if err := s.builds.Update(ctx, build); err != nil {
		return err
	}

	rec := &domain.StageResult{
		ID:        uuid.New(),
		BuildID:   build.ID,
		Stage:     stage,
		Status:    domain.StageStatusRunning,
		StartedAt: now,
	}
	if err := s.builds.CreateStage(ctx, rec); err != nil {
		return err
	}

	log.WithFields(log.Fields{"build": build.ID, "stage": stage}).Info("stage started")
	msg, err := fn(ctx)

	finished := time.Now()
	rec.FinishedAt = &finished
	if err != nil {
		rec.Status = domain.StageStatusFailed
		rec.Message = err.Error()
		if uerr := s.builds.UpdateStage(ctx, rec); uerr != nil {
			log.WithError(uerr).Warn("failed to record stage failure")
		}

		build.Status = domain.BuildStatusFailed
		build.FailureMessage = fmt.Sprintf("stage %s: %v", stage, err)
		build.UpdatedAt = finished
		if uerr := s.builds.Update(ctx, build); uerr != nil {
			log.WithError(uerr).Warn("failed to mark build failed")
		}
		log.WithFields(log.Fields{"build": build.ID, "stage": stage}).WithError(err).Error("stage failed, aborting pipeline")
		return fmt.Errorf("stage %s: %w", stage, err)
	}

	rec.Status = domain.StageStatusSucceeded
	rec.Message = msg
	if err := s.builds.UpdateStage(ctx, rec); err != nil {
		return err
	}
	log.WithFields(log.Fields{"build": build.ID, "stage": stage}).Info("stage succeeded")
	return nil
}
