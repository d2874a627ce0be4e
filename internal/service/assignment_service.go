package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onboardly/onboardly-backend/internal/config"
	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/onboardly/onboardly-backend/internal/progression"
	"github.com/onboardly/onboardly-backend/internal/repository"
	"github.com/onboardly/onboardly-backend/internal/response"
	"github.com/onboardly/onboardly-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrProgressNotFound   = errors.New("module not part of this assignment")
	ErrNotAssignmentOwner = errors.New("not the owner of this assignment")
	ErrModuleLocked       = errors.New("previous module must be completed first")
	ErrAlreadyAssigned    = errors.New("user already has an active assignment for this flow")
	ErrNotQuizModule      = errors.New("module is not a quiz")
	ErrFlowInactive       = errors.New("flow is not active")
	ErrUserNotFound       = errors.New("user not found")
)

// BulkAssignResult reports the outcome of a bulk assignment.
type BulkAssignResult struct {
	Created []model.Assignment `json:"created"`
	Skipped []uuid.UUID        `json:"skipped"`
}

// AssignmentService handles assignment lifecycle and progress tracking. All
// ledger mutations run inside a transaction holding a lock on the assignment
// row, and finish by recomputing the aggregate state from the full ledger.
type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
	progressRepo   *repository.ProgressRepository
	flowRepo       *repository.FlowRepository
	moduleRepo     *repository.ModuleRepository
	userRepo       *repository.UserRepository
	pool           *pgxpool.Pool
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	assignmentRepo *repository.AssignmentRepository,
	progressRepo *repository.ProgressRepository,
	flowRepo *repository.FlowRepository,
	moduleRepo *repository.ModuleRepository,
	userRepo *repository.UserRepository,
	pool *pgxpool.Pool,
	rdb *redis.Client,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		progressRepo:   progressRepo,
		flowRepo:       flowRepo,
		moduleRepo:     moduleRepo,
		userRepo:       userRepo,
		pool:           pool,
		rdb:            rdb,
		log:            log.With().Str("component", "assignment_service").Logger(),
	}
}

// Assign creates an assignment and its full progress ledger in one
// transaction. Module metadata is snapshotted into the ledger so later flow
// edits never affect an in-flight assignment. A flow with no modules
// completes immediately.
func (s *AssignmentService) Assign(ctx context.Context, tenantID uuid.UUID, assignedBy *uuid.UUID, req *model.AssignRequest) (*model.Assignment, error) {
	flow, err := s.flowRepo.GetByID(ctx, req.FlowID, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFlowNotFound
		}
		return nil, err
	}
	if !flow.IsActive {
		return nil, ErrFlowInactive
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.TenantID != tenantID {
		return nil, ErrUserNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	exists, err := s.assignmentRepo.HasActiveTx(ctx, tx, req.FlowID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("check active assignment: %w", err)
	}
	if exists {
		return nil, ErrAlreadyAssigned
	}

	modules, err := s.moduleRepo.ListByFlowTx(ctx, tx, req.FlowID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}

	assignment := &model.Assignment{
		TenantID:   tenantID,
		FlowID:     req.FlowID,
		UserID:     req.UserID,
		AssignedBy: assignedBy,
		Status:     model.AssignmentStatusNotStarted,
		DueDate:    req.DueDate,
	}
	if err := s.assignmentRepo.CreateTx(ctx, tx, assignment); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	entries := make([]model.ModuleProgress, len(modules))
	for i, m := range modules {
		entries[i] = model.ModuleProgress{
			AssignmentID: assignment.ID,
			ModuleID:     m.ID,
			ModuleTitle:  m.Title,
			Position:     m.Position,
			IsRequired:   m.IsRequired,
			ModuleType:   m.ModuleType,
			Quiz:         m.Quiz,
		}
	}
	if err := s.progressRepo.CreateBatchTx(ctx, tx, entries); err != nil {
		return nil, fmt.Errorf("create progress ledger: %w", err)
	}

	if len(modules) == 0 {
		outcome := progression.Recompute(*assignment, nil, time.Now())
		if err := s.assignmentRepo.ApplyProgressTx(ctx, tx, assignment.ID,
			outcome.Status, outcome.Percentage, nil, outcome.CompletedAt); err != nil {
			return nil, fmt.Errorf("apply progress: %w", err)
		}
		assignment.Status = outcome.Status
		assignment.CompletionPercentage = outcome.Percentage
		assignment.CompletedAt = outcome.CompletedAt
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.log.Info().
		Str("assignment_id", assignment.ID.String()).
		Str("flow_id", req.FlowID.String()).
		Str("user_id", req.UserID.String()).
		Int("modules", len(modules)).
		Msg("Flow assigned")
	return assignment, nil
}

// BulkAssign assigns one flow to many users, skipping users that already have
// an active assignment.
func (s *AssignmentService) BulkAssign(ctx context.Context, tenantID uuid.UUID, assignedBy *uuid.UUID, req *model.BulkAssignRequest) (*BulkAssignResult, error) {
	result := &BulkAssignResult{
		Created: []model.Assignment{},
		Skipped: []uuid.UUID{},
	}
	for _, userID := range req.UserIDs {
		assignment, err := s.Assign(ctx, tenantID, assignedBy, &model.AssignRequest{
			FlowID:  req.FlowID,
			UserID:  userID,
			DueDate: req.DueDate,
		})
		if err != nil {
			if errors.Is(err, ErrAlreadyAssigned) || errors.Is(err, ErrUserNotFound) {
				result.Skipped = append(result.Skipped, userID)
				continue
			}
			return nil, err
		}
		result.Created = append(result.Created, *assignment)
	}
	return result, nil
}

// GetDetail retrieves an assignment with its full ledger. Employees can only
// read their own assignments; admins are scoped by tenant.
func (s *AssignmentService) GetDetail(ctx context.Context, id uuid.UUID, claims *Claims) (*model.AssignmentDetail, error) {
	assignment, err := s.getAuthorized(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.ListByAssignment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	if progress == nil {
		progress = []model.ModuleProgress{}
	}

	return &model.AssignmentDetail{Assignment: *assignment, Progress: progress}, nil
}

// CompleteModule marks a non-quiz module completed. Completing an already
// completed module refreshes notes and accumulates time but stays idempotent
// otherwise. Returns the refreshed assignment.
func (s *AssignmentService) CompleteModule(ctx context.Context, assignmentID, moduleID uuid.UUID, claims *Claims, req *model.CompleteModuleRequest) (*model.Assignment, error) {
	var event *websocket.ProgressEvent

	assignment, err := s.mutateLedger(ctx, assignmentID, claims, func(tx pgx.Tx, a *model.Assignment, entry *model.ModuleProgress, ledger []model.ModuleProgress) error {
		if entry.ModuleType == model.ModuleTypeQuiz {
			return ErrNotQuizModule
		}

		now := time.Now()
		entry.IsCompleted = true
		entry.CompletedAt = &now
		if req.Notes != nil {
			entry.Notes = req.Notes
		}
		if req.TimeSpentMinutes != nil {
			entry.TimeSpentMinutes += *req.TimeSpentMinutes
		}
		if err := s.progressRepo.UpdateCompletionTx(ctx, tx, entry); err != nil {
			return fmt.Errorf("update completion: %w", err)
		}

		event = &websocket.ProgressEvent{
			Event:        websocket.EventModuleCompleted,
			AssignmentID: assignmentID.String(),
			ModuleID:     moduleID.String(),
		}
		return nil
	}, moduleID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, event, assignment)
	return assignment, nil
}

// SubmitQuiz grades a quiz submission against the snapshotted definition. A
// failed attempt records score and passed=false but leaves completion state
// untouched; retries are unlimited. Returns the refreshed assignment and the
// grade.
func (s *AssignmentService) SubmitQuiz(ctx context.Context, assignmentID, moduleID uuid.UUID, claims *Claims, req *model.SubmitQuizRequest) (*model.Assignment, *progression.GradeResult, error) {
	var grade progression.GradeResult
	var event *websocket.ProgressEvent

	assignment, err := s.mutateLedger(ctx, assignmentID, claims, func(tx pgx.Tx, a *model.Assignment, entry *model.ModuleProgress, ledger []model.ModuleProgress) error {
		if entry.ModuleType != model.ModuleTypeQuiz || entry.Quiz == nil {
			return ErrNotQuizModule
		}

		grade = progression.Grade(*entry.Quiz, req.Answers)

		now := time.Now()
		timeSpent := entry.TimeSpentMinutes
		if req.TimeSpentMinutes != nil {
			timeSpent += *req.TimeSpentMinutes
		}
		var completedAt *time.Time
		if grade.Passed {
			completedAt = &now
		}
		if err := s.progressRepo.UpdateQuizResultTx(ctx, tx, entry.ID, grade.Score, grade.Passed, completedAt, timeSpent); err != nil {
			return fmt.Errorf("update quiz result: %w", err)
		}
		entry.QuizScore = &grade.Score
		entry.QuizPassed = &grade.Passed
		if grade.Passed {
			entry.IsCompleted = true
			if entry.CompletedAt == nil {
				entry.CompletedAt = completedAt
			}
		}

		event = &websocket.ProgressEvent{
			Event:        websocket.EventQuizGraded,
			AssignmentID: assignmentID.String(),
			ModuleID:     moduleID.String(),
			QuizScore:    &grade.Score,
			QuizPassed:   &grade.Passed,
		}
		return nil
	}, moduleID)
	if err != nil {
		return nil, nil, err
	}

	s.publishEvent(ctx, event, assignment)
	return assignment, &grade, nil
}

// ListMy retrieves the calling employee's assignments.
func (s *AssignmentService) ListMy(ctx context.Context, userID uuid.UUID) ([]model.Assignment, error) {
	assignments, err := s.assignmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	return assignments, nil
}

// List retrieves a tenant's assignments with filters and pagination.
func (s *AssignmentService) List(ctx context.Context, tenantID uuid.UUID, filter model.AssignmentFilter, page, perPage int) ([]model.Assignment, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	assignments, total, err := s.assignmentRepo.List(ctx, tenantID, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	return assignments, response.NewPagination(page, perPage, total), nil
}

// Delete removes an assignment and its ledger.
func (s *AssignmentService) Delete(ctx context.Context, id, tenantID uuid.UUID) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAssignmentNotFound
		}
		return err
	}
	if assignment.TenantID != tenantID {
		return ErrAssignmentNotFound
	}
	return s.assignmentRepo.Delete(ctx, id)
}

// EmployeeDashboard summarizes an employee's assignments.
func (s *AssignmentService) EmployeeDashboard(ctx context.Context, userID uuid.UUID) (*model.EmployeeDashboard, error) {
	assignments, err := s.ListMy(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dash := &model.EmployeeDashboard{
		TotalAssignments: len(assignments),
		Assignments:      assignments,
	}
	for i := range assignments {
		switch assignments[i].Status {
		case model.AssignmentStatusCompleted:
			dash.Completed++
		case model.AssignmentStatusInProgress:
			dash.InProgress++
		default:
			dash.NotStarted++
		}
		if assignments[i].IsOverdue(now) {
			dash.Overdue++
		}
	}
	return dash, nil
}

// mutateLedger runs a ledger mutation under the assignment row lock: load and
// lock the assignment, authorize, check sequencing, apply the mutation, then
// recompute and persist the aggregate state before committing.
func (s *AssignmentService) mutateLedger(
	ctx context.Context,
	assignmentID uuid.UUID,
	claims *Claims,
	mutate func(tx pgx.Tx, a *model.Assignment, entry *model.ModuleProgress, ledger []model.ModuleProgress) error,
	moduleID uuid.UUID,
) (*model.Assignment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	assignment, err := s.assignmentRepo.GetForUpdateTx(ctx, tx, assignmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if err := authorize(assignment, claims); err != nil {
		return nil, err
	}

	entry, err := s.progressRepo.GetByAssignmentAndModuleTx(ctx, tx, assignmentID, moduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}

	ledger, err := s.progressRepo.ListByAssignmentTx(ctx, tx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	if progression.Locked(ledger, entry.Position) {
		return nil, ErrModuleLocked
	}

	if err := mutate(tx, assignment, entry, ledger); err != nil {
		return nil, err
	}

	// Re-read the ledger so the recompute sees the mutation.
	ledger, err = s.progressRepo.ListByAssignmentTx(ctx, tx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("reload progress: %w", err)
	}

	now := time.Now()
	outcome := progression.Recompute(*assignment, ledger, now)

	startedAt := assignment.StartedAt
	if startedAt == nil && outcome.Status != model.AssignmentStatusNotStarted {
		startedAt = &now
	}

	if err := s.assignmentRepo.ApplyProgressTx(ctx, tx, assignmentID,
		outcome.Status, outcome.Percentage, startedAt, outcome.CompletedAt); err != nil {
		return nil, fmt.Errorf("apply progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	assignment.Status = outcome.Status
	assignment.CompletionPercentage = outcome.Percentage
	assignment.StartedAt = startedAt
	assignment.CompletedAt = outcome.CompletedAt
	return assignment, nil
}

// getAuthorized loads an assignment and applies ownership/tenant checks.
func (s *AssignmentService) getAuthorized(ctx context.Context, id uuid.UUID, claims *Claims) (*model.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if err := authorize(assignment, claims); err != nil {
		return nil, err
	}
	return assignment, nil
}

// authorize enforces access: employees may only touch their own assignments,
// admins anything within their tenant.
func authorize(a *model.Assignment, claims *Claims) error {
	switch claims.TokenType {
	case TokenTypeEmployee:
		if a.UserID != claims.UserID {
			return ErrNotAssignmentOwner
		}
	case TokenTypeAdmin:
		if claims.Role != model.RoleSuperAdmin && a.TenantID != claims.TenantID {
			return ErrAssignmentNotFound
		}
	default:
		return ErrNotAssignmentOwner
	}
	return nil
}

// publishEvent fans a progress event out on the assignment's Redis channel.
// Runs after commit; failures are logged, never surfaced.
func (s *AssignmentService) publishEvent(ctx context.Context, event *websocket.ProgressEvent, assignment *model.Assignment) {
	if event == nil || assignment == nil {
		return
	}
	event.Status = string(assignment.Status)
	event.CompletionPercentage = assignment.CompletionPercentage

	channel := config.CacheKey.AssignmentEventsChannel(assignment.ID.String())
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal progress event")
		return
	}
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Failed to publish progress event")
	}

	if assignment.Status == model.AssignmentStatusCompleted {
		done := websocket.ProgressEvent{
			Event:                websocket.EventAssignmentCompleted,
			AssignmentID:         assignment.ID.String(),
			Status:               string(assignment.Status),
			CompletionPercentage: assignment.CompletionPercentage,
		}
		if data, err := json.Marshal(done); err == nil {
			if err := s.rdb.Publish(ctx, channel, data).Err(); err != nil {
				s.log.Warn().Err(err).Str("channel", channel).Msg("Failed to publish completion event")
			}
		}
	}
}
