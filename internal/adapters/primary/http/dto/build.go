package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
)

type CreateBuildRequest struct {
	ChromiumVersion string     `json:"chromium_version" binding:"required,max=100"`
	PackageRelease  int        `json:"package_release"`
	PatchSetID      *uuid.UUID `json:"patch_set_id"`
}

type BuildResponse struct {
	ID               uuid.UUID  `json:"id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ChromiumVersion  string     `json:"chromium_version"`
	PackageRelease   int        `json:"package_release"`
	PatchSetID       *uuid.UUID `json:"patch_set_id,omitempty"`
	Status           string     `json:"status"`
	CurrentStage     string     `json:"current_stage,omitempty"`
	UpstreamRevision string     `json:"upstream_revision,omitempty"`
	SandboxPath      string     `json:"sandbox_path,omitempty"`
	FailureMessage   string     `json:"failure_message,omitempty"`
}

type ListBuildsResponse struct {
	Items      []BuildResponse `json:"items"`
	Total      int             `json:"total"`
	PageSize   int             `json:"page_size"`
	NextOffset int             `json:"next_offset"`
}

type StageResultResponse struct {
	ID         uuid.UUID  `json:"id"`
	Stage      string     `json:"stage"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Message    string     `json:"message,omitempty"`
}

type ListStagesResponse struct {
	Items []StageResultResponse `json:"items"`
}

func ToBuildResponse(b *domain.Build) BuildResponse {
	return BuildResponse{
		ID:               b.ID,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
		ChromiumVersion:  b.ChromiumVersion,
		PackageRelease:   b.PackageRelease,
		PatchSetID:       b.PatchSetID,
		Status:           string(b.Status),
		CurrentStage:     string(b.CurrentStage),
		UpstreamRevision: b.UpstreamRevision,
		SandboxPath:      b.SandboxPath,
		FailureMessage:   b.FailureMessage,
	}
}

func ToStageResultResponse(sr *domain.StageResult) StageResultResponse {
	return StageResultResponse{
		ID:         sr.ID,
		Stage:      string(sr.Stage),
		Status:     string(sr.Status),
		StartedAt:  sr.StartedAt,
		FinishedAt: sr.FinishedAt,
		Message:    sr.Message,
	}
}
