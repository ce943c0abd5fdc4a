package domain

import (
	"time"

	"github.com/google/uuid"
)

type BuildStatus string

const (
	BuildStatusPending   BuildStatus = "PENDING"
	BuildStatusRunning   BuildStatus = "RUNNING"
	BuildStatusSucceeded BuildStatus = "SUCCEEDED"
	BuildStatusFailed    BuildStatus = "FAILED"
	BuildStatusCancelled BuildStatus = "CANCELLED"
)

type Stage string

const (
	StageFetch     Stage = "fetch"
	StageVerify    Stage = "verify"
	StageExtract   Stage = "extract"
	StagePatch     Stage = "patch"
	StageNormalize Stage = "normalize"
	StageConfigure Stage = "configure"
	StageCompile   Stage = "compile"
	StagePackage   Stage = "package"
)

// StageOrder is the fixed pipeline sequence. A build that fails at stage N
// never records stages after N.
var StageOrder = []Stage{
	StageFetch,
	StageVerify,
	StageExtract,
	StagePatch,
	StageNormalize,
	StageConfigure,
	StageCompile,
	StagePackage,
}

func ValidStage(s Stage) bool {
	for _, stage := range StageOrder {
		if s == stage {
			return true
		}
	}
	return false
}

type StageStatus string

const (
	StageStatusRunning   StageStatus = "RUNNING"
	StageStatusSucceeded StageStatus = "SUCCEEDED"
	StageStatusFailed    StageStatus = "FAILED"
)

// Build is one packaging run of a pinned Chromium version.
type Build struct {
	ID               uuid.UUID   `json:"id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	ChromiumVersion  string      `json:"chromium_version"`
	PackageRelease   int         `json:"package_release"`
	PatchSetID       *uuid.UUID  `json:"patch_set_id"`
	Status           BuildStatus `json:"status"`
	CurrentStage     Stage       `json:"current_stage"`
	UpstreamRevision string      `json:"upstream_revision"`
	SandboxPath      string      `json:"sandbox_path"`
	FailureMessage   string      `json:"failure_message"`
}

func (b *Build) Terminal() bool {
	switch b.Status {
	case BuildStatusSucceeded, BuildStatusFailed, BuildStatusCancelled:
		return true
	}
	return false
}

// StageResult records one executed pipeline stage for a build.
type StageResult struct {
	ID         uuid.UUID   `json:"id"`
	BuildID    uuid.UUID   `json:"build_id"`
	Stage      Stage       `json:"stage"`
	Status     StageStatus `json:"status"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at"`
	Message    string      `json:"message"`
}
