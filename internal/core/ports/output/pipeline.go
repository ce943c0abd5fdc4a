package ports

import (
	"context"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
)

// SourceFetcher retrieves the pinned source archive and its hashes file for
// an exact version string.
type SourceFetcher interface {
	FetchArchive(ctx context.Context, version, destDir string) (*domain.SourceArchive, error)
	// Verify runs every hash named in the archive's hashes file against the
	// archive. Unknown algorithms are skipped; any mismatch returns
	// domain.ErrChecksumMismatch.
	Verify(ctx context.Context, archive *domain.SourceArchive) error
}

// SandboxExtractor unpacks a verified archive into the build sandbox,
// dropping paths listed in cleaning. It returns the upstream revision marker
// found in the extracted tree, or domain.ErrRevisionNotFound.
type SandboxExtractor interface {
	Extract(ctx context.Context, archive *domain.SourceArchive, root string, cleaning []string) (revision string, err error)
}

// PatchApplier applies an ordered patch series against a source tree.
// A context mismatch on any patch is fatal; no partial-patch state is left
// usable (the run aborts).
type PatchApplier interface {
	ApplySeries(ctx context.Context, root string, patches []domain.Patch) error
}

// TreeNormalizer rewrites toolchain flags, substitutes interpreter paths and
// prunes vendored libraries that will be satisfied by system equivalents.
type TreeNormalizer interface {
	Normalize(ctx context.Context, root string) error
}

// Toolchain generates build files from the declarative flag set and invokes
// the build tool. Internal build parallelism belongs to the tool.
type Toolchain interface {
	Configure(ctx context.Context, root, buildOut string) error
	Compile(ctx context.Context, root, buildOut string, targets []string) error
}

// Packager copies compiled artifacts and resource bundles into the final
// filesystem layout.
type Packager interface {
	Install(ctx context.Context, root, buildOut string, build *domain.Build) error
}
