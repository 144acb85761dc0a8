package handler

import (
	"github.com/gin-gonic/gin"
	appmetering "github.com/gridledger/billing/internal/application/metering"
)

// ReadingHandler handles readings endpoints
type ReadingHandler struct {
	BaseHandler
	readingService *appmetering.ReadingService
}

// NewReadingHandler creates a new ReadingHandler
func NewReadingHandler(readingService *appmetering.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingService: readingService}
}

// Create handles POST /readings. A register value lower than the previous reading is rejected.
func (h *ReadingHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appmetering.CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	reading, err := h.readingService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reading)
}

// Get handles GET /readings/:id
func (h *ReadingHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	reading, err := h.readingService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reading)
}

// List handles GET /readings
func (h *ReadingHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter appmetering.ReadingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindError(c, err)
		return
	}

	readings, total, err := h.readingService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, readings, total, page, size)
}

// Update handles PUT /readings/:id
func (h *ReadingHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appmetering.UpdateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	reading, err := h.readingService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reading)
}

// Delete handles DELETE /readings/:id
func (h *ReadingHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.readingService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
