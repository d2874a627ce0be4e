package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/onboardly/onboardly-backend/internal/middleware"
	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/onboardly/onboardly-backend/internal/response"
	"github.com/onboardly/onboardly-backend/internal/service"
	"github.com/onboardly/onboardly-backend/internal/validator"
)

// AssignmentHandler handles admin assignment management endpoints.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// Assign godoc
// POST /api/v1/admin/assignments
// Assigns a flow to a user, creating the full progress ledger atomically.
func (h *AssignmentHandler) Assign(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.AssignRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignedBy := claims.UserID
	assignment, err := h.assignmentService.Assign(c.Request.Context(), claims.TenantID, &assignedBy, &req)
	if err != nil {
		failAssignment(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}

// BulkAssign godoc
// POST /api/v1/admin/assignments/bulk
// Assigns a flow to many users; users with an active assignment are skipped.
func (h *AssignmentHandler) BulkAssign(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.BulkAssignRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignedBy := claims.UserID
	result, err := h.assignmentService.BulkAssign(c.Request.Context(), claims.TenantID, &assignedBy, &req)
	if err != nil {
		failAssignment(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// ListAssignments godoc
// GET /api/v1/admin/assignments
// Lists the tenant's assignments with filters and pagination.
// Filters: ?status=, ?flow_id=, ?user_id=, ?overdue=true|false
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	var filter model.AssignmentFilter
	if s := c.Query("status"); s != "" {
		status := model.AssignmentStatus(s)
		filter.Status = &status
	}
	if f := c.Query("flow_id"); f != "" {
		flowID, err := uuid.Parse(f)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		filter.FlowID = &flowID
	}
	if u := c.Query("user_id"); u != "" {
		userID, err := uuid.Parse(u)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		filter.UserID = &userID
	}
	if o := c.Query("overdue"); o != "" {
		overdue := o == "true"
		filter.IsOverdue = &overdue
	}

	assignments, pagination, err := h.assignmentService.List(c.Request.Context(), claims.TenantID, filter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"assignments": assignments}, pagination)
}

// GetAssignment godoc
// GET /api/v1/admin/assignments/:assignment_id
// Returns an assignment with its full progress ledger.
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.assignmentService.GetDetail(c.Request.Context(), assignmentID, claims)
	if err != nil {
		failAssignment(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": detail.Assignment, "progress": detail.Progress})
}

// DeleteAssignment godoc
// DELETE /api/v1/admin/assignments/:assignment_id
// Removes an assignment and its ledger.
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), assignmentID, claims.TenantID); err != nil {
		failAssignment(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "assignment deleted"})
}

// failAssignment maps assignment service errors to HTTP responses. Locked
// modules use 423 so clients can distinguish sequencing from permissions.
func failAssignment(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrFlowNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrProgressNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotAssignmentOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotAssignmentOwner)
	case errors.Is(err, service.ErrAlreadyAssigned):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyAssigned)
	case errors.Is(err, service.ErrFlowInactive):
		response.Fail(c, http.StatusBadRequest, response.ErrFlowInactive)
	case errors.Is(err, service.ErrModuleLocked):
		response.Fail(c, http.StatusLocked, response.ErrModuleLocked)
	case errors.Is(err, service.ErrNotQuizModule):
		response.Fail(c, http.StatusBadRequest, response.ErrNotQuizModule)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
