package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/onboardly/onboardly-backend/internal/middleware"
	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/onboardly/onboardly-backend/internal/response"
	"github.com/onboardly/onboardly-backend/internal/service"
	"github.com/onboardly/onboardly-backend/internal/validator"
)

// EmployeePortalHandler handles the employee-facing onboarding endpoints.
type EmployeePortalHandler struct {
	assignmentService *service.AssignmentService
	flowService       *service.FlowService
}

// NewEmployeePortalHandler creates a new EmployeePortalHandler.
func NewEmployeePortalHandler(assignmentService *service.AssignmentService, flowService *service.FlowService) *EmployeePortalHandler {
	return &EmployeePortalHandler{
		assignmentService: assignmentService,
		flowService:       flowService,
	}
}

// ListMyAssignments godoc
// GET /api/v1/employee/assignments
// Lists the calling employee's assignments, newest first.
func (h *EmployeePortalHandler) ListMyAssignments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assignments, err := h.assignmentService.ListMy(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// GetMyAssignment godoc
// GET /api/v1/employee/assignments/:assignment_id
// Returns one of the employee's assignments with its full ledger.
func (h *EmployeePortalHandler) GetMyAssignment(c *gin.Context) {
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

// GetFlowContent godoc
// GET /api/v1/employee/assignments/:assignment_id/content
// Returns the cached flow payload for an assignment, with quiz answers
// stripped.
func (h *EmployeePortalHandler) GetFlowContent(c *gin.Context) {
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

	payload, err := h.flowService.GetFlowPayload(c.Request.Context(), detail.Assignment.FlowID, detail.Assignment.TenantID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"flow": payload})
}

// CompleteModule godoc
// POST /api/v1/employee/assignments/:assignment_id/modules/:module_id/complete
// Marks a non-quiz module completed. Locked modules return 423.
func (h *EmployeePortalHandler) CompleteModule(c *gin.Context) {
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
	moduleID, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CompleteModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.assignmentService.CompleteModule(c.Request.Context(), assignmentID, moduleID, claims, &req)
	if err != nil {
		failAssignment(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": assignment})
}

// SubmitQuiz godoc
// POST /api/v1/employee/assignments/:assignment_id/modules/:module_id/quiz
// Grades a quiz submission. A failed attempt records the score but does not
// complete the module; retries are unlimited.
func (h *EmployeePortalHandler) SubmitQuiz(c *gin.Context) {
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
	moduleID, err := uuid.Parse(c.Param("module_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, grade, err := h.assignmentService.SubmitQuiz(c.Request.Context(), assignmentID, moduleID, claims, &req)
	if err != nil {
		failAssignment(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"assignment": assignment,
		"score":      grade.Score,
		"passed":     grade.Passed,
	})
}

// Dashboard godoc
// GET /api/v1/employee/dashboard
// Summarizes the employee's assignments by status and overdue count.
func (h *EmployeePortalHandler) Dashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	dash, err := h.assignmentService.EmployeeDashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"dashboard": dash})
}
