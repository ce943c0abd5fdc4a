package domain

import (
	"time"

	"github.com/google/uuid"
)

// PatchSet is an ordered series of unified diffs applied to the source tree
// before configuration. Order is the series order, not creation order.
type PatchSet struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Patches     []Patch   `json:"patches"`
}

// Patch is a single unified diff. Subject and Author come from the
// commit-style header and are metadata only; Body is what gets applied.
type Patch struct {
	ID         uuid.UUID `json:"id"`
	PatchSetID uuid.UUID `json:"patch_set_id"`
	Position   int       `json:"position"`
	FileName   string    `json:"file_name"`
	Subject    string    `json:"subject"`
	Author     string    `json:"author"`
	Body       string    `json:"body"`
}
