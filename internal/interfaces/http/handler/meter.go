package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appmetering "github.com/gridledger/billing/internal/application/metering"
)

// MeterHandler handles meters endpoints
type MeterHandler struct {
	BaseHandler
	meterService *appmetering.MeterService
	imageService *appmetering.MeterImageService
}

// NewMeterHandler creates a new MeterHandler
func NewMeterHandler(meterService *appmetering.MeterService, imageService *appmetering.MeterImageService) *MeterHandler {
	return &MeterHandler{meterService: meterService, imageService: imageService}
}

// Create handles POST /meters. Status defaults to ACTIVE.
func (h *MeterHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appmetering.CreateMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	meter, err := h.meterService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, meter)
}

// Get handles GET /meters/:id
func (h *MeterHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	meter, err := h.meterService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, meter)
}

// List handles GET /meters
func (h *MeterHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter appmetering.MeterListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindError(c, err)
		return
	}

	meters, total, err := h.meterService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, meters, total, page, size)
}

// Update handles PUT /meters/:id
func (h *MeterHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appmetering.UpdateMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	meter, err := h.meterService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, meter)
}

// Delete handles DELETE /meters/:id. Its readings and their invoices cascade.
func (h *MeterHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.meterService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// InitiateImageUpload handles POST /meters/:id/images/:slot/upload-url
func (h *MeterHandler) InitiateImageUpload(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, slot, ok := h.imagePath(c)
	if !ok {
		return
	}
	var req appmetering.InitiateImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	upload, err := h.imageService.InitiateUpload(c.Request.Context(), actor, id, slot, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// ConfirmImageUpload handles POST /meters/:id/images/:slot/confirm
func (h *MeterHandler) ConfirmImageUpload(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, slot, ok := h.imagePath(c)
	if !ok {
		return
	}
	var req appmetering.ConfirmImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	meter, err := h.imageService.ConfirmUpload(c.Request.Context(), actor, id, slot, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, meter)
}

// ImageDownloadURL handles GET /meters/:id/images/:slot
func (h *MeterHandler) ImageDownloadURL(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, slot, ok := h.imagePath(c)
	if !ok {
		return
	}

	image, err := h.imageService.DownloadURL(c.Request.Context(), actor, id, slot)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, image)
}

func (h *MeterHandler) imagePath(c *gin.Context) (uuid.UUID, appmetering.ImageSlot, bool) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return uuid.Nil, "", false
	}
	slot, err := appmetering.ParseImageSlot(c.Param("slot"))
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, "", false
	}
	return id, slot, true
}
