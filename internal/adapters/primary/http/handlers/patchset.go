package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fxdian/ungoogled-chromium/internal/adapters/primary/http/dto"
)

func (h *Handler) ListPatchSets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	sets, total, err := h.patchSetSvc.List(c.Request.Context(), limit, offset)
	if err != nil {
		log.WithError(err).Error("list patch sets failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.PatchSetResponse, 0, len(sets))
	for _, ps := range sets {
		items = append(items, dto.ToPatchSetResponse(ps, false))
	}

	c.JSON(http.StatusOK, dto.ListPatchSetsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetPatchSet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patch set id"})
		return
	}

	ps, err := h.patchSetSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPatchSetResponse(ps, true))
}

func (h *Handler) CreatePatchSet(c *gin.Context) {
	var req dto.CreatePatchSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ps, err := h.patchSetSvc.Create(c.Request.Context(), req.Name, req.Description, dto.ToPatchInputs(req.Patches))
	if err != nil {
		log.WithError(err).Error("create patch set failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPatchSetResponse(ps, true))
}

func (h *Handler) DeletePatchSet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patch set id"})
		return
	}

	if err := h.patchSetSvc.Delete(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ValidatePatchSet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patch set id"})
		return
	}

	results, err := h.patchSetSvc.Validate(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	valid := true
	for _, r := range results {
		if !r.Valid {
			valid = false
			break
		}
	}

	c.JSON(http.StatusOK, dto.ValidatePatchSetResponse{Valid: valid, Results: results})
}
