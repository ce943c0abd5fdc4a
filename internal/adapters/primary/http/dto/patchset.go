package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	"github.com/fxdian/ungoogled-chromium/internal/core/services"
)

type PatchDTO struct {
	FileName string `json:"file_name" binding:"required,max=255"`
	Body     string `json:"body" binding:"required"`
}

type CreatePatchSetRequest struct {
	Name        string     `json:"name" binding:"required,max=100"`
	Description string     `json:"description"`
	Patches     []PatchDTO `json:"patches" binding:"required"`
}

type PatchResponse struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
	FileName string    `json:"file_name"`
	Subject  string    `json:"subject,omitempty"`
	Author   string    `json:"author,omitempty"`
	Body     string    `json:"body,omitempty"`
}

type PatchSetResponse struct {
	ID          uuid.UUID       `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Patches     []PatchResponse `json:"patches"`
}

type ListPatchSetsResponse struct {
	Items      []PatchSetResponse `json:"items"`
	Total      int                `json:"total"`
	PageSize   int                `json:"page_size"`
	NextOffset int                `json:"next_offset"`
}

type ValidatePatchSetResponse struct {
	Valid   bool                        `json:"valid"`
	Results []services.ValidationResult `json:"results"`
}

// ToPatchSetResponse maps a patch set. Bodies are included only when
// withBodies is set; list endpoints stay light.
func ToPatchSetResponse(ps *domain.PatchSet, withBodies bool) PatchSetResponse {
	patches := make([]PatchResponse, 0, len(ps.Patches))
	for _, p := range ps.Patches {
		pr := PatchResponse{
			ID:       p.ID,
			Position: p.Position,
			FileName: p.FileName,
			Subject:  p.Subject,
			Author:   p.Author,
		}
		if withBodies {
			pr.Body = p.Body
		}
		patches = append(patches, pr)
	}
	return PatchSetResponse{
		ID:          ps.ID,
		CreatedAt:   ps.CreatedAt,
		UpdatedAt:   ps.UpdatedAt,
		Name:        ps.Name,
		Description: ps.Description,
		Patches:     patches,
	}
}

func ToPatchInputs(patches []PatchDTO) []services.PatchInput {
	inputs := make([]services.PatchInput, 0, len(patches))
	for _, p := range patches {
		inputs = append(inputs, services.PatchInput{FileName: p.FileName, Body: p.Body})
	}
	return inputs
}
