package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
	"github.com/fxdian/ungoogled-chromium/internal/core/services"
)

type Handler struct {
	buildSvc    *services.BuildService
	patchSetSvc *services.PatchSetService
	pipeline    *services.PipelineService
	remote      ports.RemoteBuilder
}

func New(
	buildSvc *services.BuildService,
	patchSetSvc *services.PatchSetService,
	pipeline *services.PipelineService,
	remote ports.RemoteBuilder,
) *Handler {
	return &Handler{
		buildSvc:    buildSvc,
		patchSetSvc: patchSetSvc,
		pipeline:    pipeline,
		remote:      remote,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Builds
	r.GET("/builds", h.ListBuilds)
	r.GET("/builds/:id", h.GetBuild)
	r.POST("/builds", h.CreateBuild)
	r.GET("/builds/:id/stages", h.ListBuildStages)
	r.POST("/builds/:id/cancel", h.CancelBuild)

	// Patch sets
	r.GET("/patchsets", h.ListPatchSets)
	r.GET("/patchsets/:id", h.GetPatchSet)
	r.POST("/patchsets", h.CreatePatchSet)
	r.DELETE("/patchsets/:id", h.DeletePatchSet)
	r.POST("/patchsets/:id/validate", h.ValidatePatchSet)
}
