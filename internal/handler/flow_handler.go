package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/onboardly/onboardly-backend/internal/middleware"
	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/onboardly/onboardly-backend/internal/response"
	"github.com/onboardly/onboardly-backend/internal/service"
	"github.com/onboardly/onboardly-backend/internal/validator"
)

// FlowHandler handles flow and module management endpoints.
type FlowHandler struct {
	flowService *service.FlowService
}

// NewFlowHandler creates a new FlowHandler.
func NewFlowHandler(flowService *service.FlowService) *FlowHandler {
	return &FlowHandler{flowService: flowService}
}

// ListFlows godoc
// GET /api/v1/admin/flows
// Lists the tenant's flows. ?include_inactive=true includes inactive ones.
func (h *FlowHandler) ListFlows(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	includeInactive := c.Query("include_inactive") == "true"

	flows, err := h.flowService.List(c.Request.Context(), claims.TenantID, includeInactive)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"flows": flows})
}

// GetFlow godoc
// GET /api/v1/admin/flows/:flow_id
// Returns one flow with its modules.
func (h *FlowHandler) GetFlow(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	flowID, err := uuid.Parse(c.Param("flow_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	flow, err := h.flowService.GetByID(c.Request.Context(), flowID, claims.TenantID)
	if err != nil {
		h.failFlow(c, err)
		return
	}

	modules, err := h.flowService.ListModules(c.Request.Context(), flowID, claims.TenantID)
	if err != nil {
		h.failFlow(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"flow": flow, "modules": modules})
}

// CreateFlow godoc
// POST /api/v1/admin/flows
// Creates a new flow.
func (h *FlowHandler) CreateFlow(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateFlowRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	flow, err := h.flowService.Create(c.Request.Context(), claims.TenantID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"flow": flow})
}

// UpdateFlow godoc
// PATCH /api/v1/admin/flows/:flow_id
// Updates flow fields and rewarms the cached payload.
func (h *FlowHandler) UpdateFlow(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	flowID, err := uuid.Parse(c.Param("flow_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateFlowRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	flow, err := h.flowService.Update(c.Request.Context(), flowID, claims.TenantID, &req)
	if err != nil {
		h.failFlow(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"flow": flow})
}

// DeleteFlow godoc
// DELETE /api/v1/admin/flows/:flow_id
// Soft-deletes a flow. Existing assignments keep their snapshotted ledgers.
func (h *FlowHandler) DeleteFlow(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	flowID, err := uuid.Parse(c.Param("flow_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.flowService.Delete(c.Request.Context(), flowID, claims.TenantID); err != nil {
		h.failFlow(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "flow deleted"})
}

// CloneFlow godoc
// POST /api/v1/admin/flows/:flow_id/clone
// Copies a flow and its modules under a new title. The clone starts inactive.
func (h *FlowHandler) CloneFlow(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	flowID, err := uuid.Parse(c.Param("flow_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CloneFlowRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	clone, err := h.flowService.Clone(c.Request.Context(), flowID, claims.TenantID, req.NewTitle)
	if err != nil {
		h.failFlow(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"flow": clone})
}

// AddModule godoc
// POST /api/v1/admin/flows/:flow_id/modules
// Adds a module to a flow.
func (h *FlowHandler) AddModule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	flowID, err := uuid.Parse(c.Param("flow_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	module, err := h.flowService.AddModule(c.Request.Context(), flowID, claims.TenantID, &req)
	if err != nil {
		h.failFlow(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"module": module})
}

// UpdateModule godoc
// PATCH /api/v1/admin/flows/:flow_id/modules/:module_id
// Updates a module within a flow.
func (h *FlowHandler) UpdateModule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	flowID, err := uuid.Parse(c.Param("flow_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	moduleID, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	module, err := h.flowService.UpdateModule(c.Request.Context(), flowID, moduleID, claims.TenantID, &req)
	if err != nil {
		h.failFlow(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"module": module})
}

// RemoveModule godoc
// DELETE /api/v1/admin/flows/:flow_id/modules/:module_id
// Removes a module from a flow.
func (h *FlowHandler) RemoveModule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	flowID, err := uuid.Parse(c.Param("flow_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	moduleID, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.flowService.RemoveModule(c.Request.Context(), flowID, moduleID, claims.TenantID); err != nil {
		h.failFlow(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "module removed"})
}

// ReorderModules godoc
// PUT /api/v1/admin/flows/:flow_id/modules/positions
// Applies a full position map to a flow's modules.
func (h *FlowHandler) ReorderModules(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	flowID, err := uuid.Parse(c.Param("flow_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReorderModulesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.flowService.ReorderModules(c.Request.Context(), flowID, claims.TenantID, &req); err != nil {
		h.failFlow(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "modules reordered"})
}

// RefreshFlowCache godoc
// POST /api/v1/admin/flows/:flow_id/refresh-cache
// Rewarms the cached employee payload after out-of-band edits.
func (h *FlowHandler) RefreshFlowCache(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	flowID, err := uuid.Parse(c.Param("flow_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	flow, err := h.flowService.GetByID(c.Request.Context(), flowID, claims.TenantID)
	if err != nil {
		h.failFlow(c, err)
		return
	}
	if err := h.flowService.WarmFlowCache(c.Request.Context(), flow); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "flow cache refreshed"})
}

// failFlow maps flow service errors to HTTP responses.
func (h *FlowHandler) failFlow(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFlowNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrModuleNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrModuleNotInFlow):
		response.Fail(c, http.StatusBadRequest, response.ErrModuleNotInFlow)
	case errors.Is(err, service.ErrPositionTaken):
		response.Fail(c, http.StatusConflict, response.ErrPositionTaken)
	case errors.Is(err, service.ErrQuizUndefined), errors.Is(err, service.ErrInvalidQuiz):
		response.Fail(c, http.StatusBadRequest, response.ErrQuizUndefined)
	case errors.Is(err, service.ErrReorderIncomplete):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
