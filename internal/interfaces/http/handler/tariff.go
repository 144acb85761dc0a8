package handler

import (
	"github.com/gin-gonic/gin"
	apptariff "github.com/gridledger/billing/internal/application/tariff"
)

// TariffHandler handles tariffs endpoints
type TariffHandler struct {
	BaseHandler
	tariffService *apptariff.TariffService
}

// NewTariffHandler creates a new TariffHandler
func NewTariffHandler(tariffService *apptariff.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: tariffService}
}

// Create handles POST /tariffs
func (h *TariffHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req apptariff.CreateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	tariff, err := h.tariffService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tariff)
}

// Get handles GET /tariffs/:id
func (h *TariffHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	tariff, err := h.tariffService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tariff)
}

// List handles GET /tariffs
func (h *TariffHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter apptariff.TariffListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindError(c, err)
		return
	}

	tariffs, total, err := h.tariffService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, tariffs, total, page, size)
}

// Update handles PUT /tariffs/:id. Issued invoices keep their amounts.
func (h *TariffHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptariff.UpdateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	tariff, err := h.tariffService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tariff)
}

// Delete handles DELETE /tariffs/:id
func (h *TariffHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.tariffService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
