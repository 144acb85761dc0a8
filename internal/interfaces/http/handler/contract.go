package handler

import (
	"github.com/gin-gonic/gin"
	appcustomer "github.com/gridledger/billing/internal/application/customer"
	apptariff "github.com/gridledger/billing/internal/application/tariff"
	"github.com/gridledger/billing/internal/interfaces/http/dto"
)

// ContractHandler handles contract endpoints and the contract's tariff
// sub-resource
type ContractHandler struct {
	BaseHandler
	contractService *appcustomer.ContractService
	tariffService   *apptariff.TariffService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *appcustomer.ContractService, tariffService *apptariff.TariffService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		tariffService:   tariffService,
	}
}

// Create handles POST /contracts
func (h *ContractHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appcustomer.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contract)
}

// Get handles GET /contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	contract, err := h.contractService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// List handles GET /contracts
func (h *ContractHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter appcustomer.ContractListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindError(c, err)
		return
	}

	contracts, total, err := h.contractService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, contracts, total, page, size)
}

// Update handles PUT /contracts/:id
func (h *ContractHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appcustomer.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	contract, err := h.contractService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// Delete handles DELETE /contracts/:id
func (h *ContractHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.contractService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AssignTariff handles POST /contracts/:id/tariff. A contract that already
// holds a tariff answers 409.
func (h *ContractHandler) AssignTariff(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptariff.AssignTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	assignment, err := h.tariffService.AssignTariff(c.Request.Context(), actor, contractID, req.TariffID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, assignment)
}

// ReassignTariff handles PUT /contracts/:id/tariff, replacing any current
// assignment
func (h *ContractHandler) ReassignTariff(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptariff.AssignTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	assignment, err := h.tariffService.ReassignTariff(c.Request.Context(), actor, contractID, req.TariffID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assignment)
}

// CurrentTariff handles GET /contracts/:id/tariff
func (h *ContractHandler) CurrentTariff(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	assignment, err := h.tariffService.CurrentTariff(c.Request.Context(), actor, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if assignment == nil {
		h.Error(c, dto.ErrCodeNotFound, "Contract has no tariff assigned")
		return
	}
	h.Success(c, assignment)
}

// UnassignTariff handles DELETE /contracts/:id/tariff
func (h *ContractHandler) UnassignTariff(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	contractID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.tariffService.UnassignTariff(c.Request.Context(), actor, contractID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
