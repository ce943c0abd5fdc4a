package domain

import "errors"

// ============================================================================
// Build Errors
// ============================================================================

// Not found errors
var (
	ErrBuildNotFound = errors.New("build not found")
	ErrStageNotFound = errors.New("build stage not found")
)

// Validation errors
var (
	ErrInvalidChromiumVersion = errors.New("chromium version is required")
	ErrInvalidBuildID         = errors.New("build ID is required")
	ErrInvalidStage           = errors.New("unknown pipeline stage")
)

// Business rule errors
var (
	ErrBuildNotCancellable = errors.New("build already finished")
	ErrBuildNotPending     = errors.New("build is not pending")
	ErrBuildCancelled      = errors.New("build was cancelled")
)

// ============================================================================
// Patch Set Errors
// ============================================================================

// Not found errors
var (
	ErrPatchSetNotFound = errors.New("patch set not found")
	ErrPatchNotFound    = errors.New("patch not found")
)

// Conflict errors
var (
	ErrPatchSetNameConflict = errors.New("patch set with this name already exists")
)

// Validation errors
var (
	ErrInvalidPatchSetName = errors.New("patch set name is required")
	ErrEmptyPatchSeries    = errors.New("patch set must contain at least one patch")
	ErrMalformedPatch      = errors.New("patch is not a well-formed unified diff")
)

// Business rule errors
var (
	ErrPatchSetInUse = errors.New("patch set is referenced by unfinished builds")
)

// ============================================================================
// Pipeline Errors
// ============================================================================

// Fatal, pipeline-aborting. Any of these marks the build FAILED and no later
// stage runs.
var (
	ErrChecksumMismatch     = errors.New("source archive checksum mismatch")
	ErrRevisionNotFound     = errors.New("upstream revision marker not found in source tree")
	ErrPatchContextMismatch = errors.New("patch context does not match source tree")
	ErrBuildToolFailed      = errors.New("build tool exited with non-zero status")
)

// ============================================================================
// Remote Builder Errors
// ============================================================================

var (
	ErrRemoteBuilderUnavailable = errors.New("remote builder is not configured")
)
