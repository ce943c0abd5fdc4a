package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
)

// MockSourceFetcher is a mock of SourceFetcher.
type MockSourceFetcher struct {
	mock.Mock
}

func (m *MockSourceFetcher) FetchArchive(ctx context.Context, version, destDir string) (*domain.SourceArchive, error) {
	args := m.Called(ctx, version, destDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SourceArchive), args.Error(1)
}

func (m *MockSourceFetcher) Verify(ctx context.Context, archive *domain.SourceArchive) error {
	args := m.Called(ctx, archive)
	return args.Error(0)
}

// MockSandboxExtractor is a mock of SandboxExtractor.
type MockSandboxExtractor struct {
	mock.Mock
}

func (m *MockSandboxExtractor) Extract(ctx context.Context, archive *domain.SourceArchive, root string, cleaning []string) (string, error) {
	args := m.Called(ctx, archive, root, cleaning)
	return args.String(0), args.Error(1)
}

// MockPatchApplier is a mock of PatchApplier.
type MockPatchApplier struct {
	mock.Mock
}

func (m *MockPatchApplier) ApplySeries(ctx context.Context, root string, patches []domain.Patch) error {
	args := m.Called(ctx, root, patches)
	return args.Error(0)
}

// MockTreeNormalizer is a mock of TreeNormalizer.
type MockTreeNormalizer struct {
	mock.Mock
}

func (m *MockTreeNormalizer) Normalize(ctx context.Context, root string) error {
	args := m.Called(ctx, root)
	return args.Error(0)
}

// MockToolchain is a mock of Toolchain.
type MockToolchain struct {
	mock.Mock
}

func (m *MockToolchain) Configure(ctx context.Context, root, buildOut string) error {
	args := m.Called(ctx, root, buildOut)
	return args.Error(0)
}

func (m *MockToolchain) Compile(ctx context.Context, root, buildOut string, targets []string) error {
	args := m.Called(ctx, root, buildOut, targets)
	return args.Error(0)
}

// MockPackager is a mock of Packager.
type MockPackager struct {
	mock.Mock
}

func (m *MockPackager) Install(ctx context.Context, root, buildOut string, build *domain.Build) error {
	args := m.Called(ctx, root, buildOut, build)
	return args.Error(0)
}
