package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fxdian/ungoogled-chromium/internal/adapters/primary/http/dto"
	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	"github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

func (h *Handler) ListBuilds(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.BuildListFilter{
		Status:          c.Query("status"),
		ChromiumVersion: c.Query("chromium_version"),
		SortBy:          c.Query("sort_by"),
		Order:           c.Query("order"),
		Limit:           limit,
		Offset:          offset,
	}

	builds, total, err := h.buildSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list builds failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.BuildResponse, 0, len(builds))
	for _, b := range builds {
		items = append(items, dto.ToBuildResponse(b))
	}

	c.JSON(http.StatusOK, dto.ListBuildsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetBuild(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidBuildID.Error()})
		return
	}

	build, err := h.buildSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBuildResponse(build))
}

func (h *Handler) CreateBuild(c *gin.Context) {
	var req dto.CreateBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	build, err := h.buildSvc.Create(c.Request.Context(), req.ChromiumVersion, req.PackageRelease, req.PatchSetID)
	if err != nil {
		log.WithError(err).Error("create build failed")
		mapDomainError(c, err)
		return
	}

	h.dispatch(build)

	c.JSON(http.StatusCreated, dto.ToBuildResponse(build))
}

// dispatch hands a pending build to the remote builder when one is
// configured, otherwise runs the pipeline in-process. The request returns
// as soon as the build is accepted.
func (h *Handler) dispatch(build *domain.Build) {
	if h.remote != nil && h.remote.IsAvailable() {
		jobName, err := h.remote.Submit(context.Background(), build)
		if err != nil {
			log.WithError(err).WithField("build_id", build.ID).
				Warn("remote submit failed, falling back to local pipeline")
		} else {
			log.WithFields(log.Fields{"build_id": build.ID, "job": jobName}).
				Info("build submitted to remote builder")
			return
		}
	}

	go func() {
		err := h.pipeline.Run(context.Background(), build.ID)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrBuildCancelled):
			log.WithField("build_id", build.ID).Info("pipeline stopped by cancel")
		default:
			log.WithError(err).WithField("build_id", build.ID).Error("pipeline run failed")
		}
	}()
}

func (h *Handler) ListBuildStages(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidBuildID.Error()})
		return
	}

	stages, err := h.buildSvc.ListStages(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := make([]dto.StageResultResponse, 0, len(stages))
	for _, sr := range stages {
		items = append(items, dto.ToStageResultResponse(sr))
	}

	c.JSON(http.StatusOK, dto.ListStagesResponse{Items: items})
}

func (h *Handler) CancelBuild(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidBuildID.Error()})
		return
	}

	build, err := h.buildSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	if h.remote != nil && h.remote.IsAvailable() {
		if err := h.remote.Cancel(c.Request.Context(), build); err != nil {
			log.WithError(err).WithField("build_id", build.ID).Warn("remote cancel failed")
		}
	}

	c.JSON(http.StatusOK, dto.ToBuildResponse(build))
}
