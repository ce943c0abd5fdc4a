package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrBuildNotFound),
		errors.Is(err, domain.ErrStageNotFound),
		errors.Is(err, domain.ErrPatchSetNotFound),
		errors.Is(err, domain.ErrPatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrPatchSetNameConflict),
		errors.Is(err, domain.ErrPatchSetInUse),
		errors.Is(err, domain.ErrBuildNotCancellable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidChromiumVersion),
		errors.Is(err, domain.ErrInvalidBuildID),
		errors.Is(err, domain.ErrInvalidStage),
		errors.Is(err, domain.ErrBuildNotPending),
		errors.Is(err, domain.ErrInvalidPatchSetName),
		errors.Is(err, domain.ErrEmptyPatchSeries),
		errors.Is(err, domain.ErrMalformedPatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrRemoteBuilderUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
