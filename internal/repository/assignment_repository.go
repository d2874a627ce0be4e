package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onboardly/onboardly-backend/internal/model"
)

// AssignmentRepository handles assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

const assignmentColumns = `id, tenant_id, flow_id, user_id, assigned_by, status,
	completion_percentage, assigned_at, started_at, completed_at, due_date, last_reminded_at`

func scanAssignment(row pgx.Row, a *model.Assignment) error {
	return row.Scan(&a.ID, &a.TenantID, &a.FlowID, &a.UserID, &a.AssignedBy, &a.Status,
		&a.CompletionPercentage, &a.AssignedAt, &a.StartedAt, &a.CompletedAt,
		&a.DueDate, &a.LastRemindedAt)
}

// CreateTx inserts a new assignment within a transaction. The progress ledger
// is created in the same transaction by ProgressRepository.CreateBatchTx.
func (r *AssignmentRepository) CreateTx(ctx context.Context, tx pgx.Tx, a *model.Assignment) error {
	return tx.QueryRow(ctx,
		`INSERT INTO assignments (tenant_id, flow_id, user_id, assigned_by, status,
			completion_percentage, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, assigned_at`,
		a.TenantID, a.FlowID, a.UserID, a.AssignedBy, a.Status,
		a.CompletionPercentage, a.DueDate,
	).Scan(&a.ID, &a.AssignedAt)
}

// GetByID retrieves an assignment by ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := scanAssignment(r.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id), a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetForUpdateTx retrieves an assignment with a row lock. Progress mutations
// lock the assignment first so concurrent completions serialize.
func (r *AssignmentRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := scanAssignment(tx.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1 FOR UPDATE`, id), a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// HasActiveTx reports whether the user already has a non-completed assignment
// for the flow, within a transaction.
func (r *AssignmentRepository) HasActiveTx(ctx context.Context, tx pgx.Tx, flowID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM assignments
			WHERE flow_id = $1 AND user_id = $2 AND status <> $3
		)`, flowID, userID, model.AssignmentStatusCompleted).Scan(&exists)
	return exists, err
}

// ListByUser retrieves all assignments for a user, newest first.
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assignmentColumns+`
		 FROM assignments WHERE user_id = $1
		 ORDER BY assigned_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// List retrieves assignments for a tenant with optional filters and
// pagination. Returns the page and the total row count.
func (r *AssignmentRepository) List(ctx context.Context, tenantID uuid.UUID, filter model.AssignmentFilter, limit, offset int) ([]model.Assignment, int, error) {
	where := ` WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += ` AND status = $` + itoa(len(args))
	}
	if filter.FlowID != nil {
		args = append(args, *filter.FlowID)
		where += ` AND flow_id = $` + itoa(len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += ` AND user_id = $` + itoa(len(args))
	}
	if filter.IsOverdue != nil {
		if *filter.IsOverdue {
			args = append(args, model.AssignmentStatusCompleted)
			where += ` AND due_date IS NOT NULL AND due_date < NOW() AND status <> $` + itoa(len(args))
		} else {
			args = append(args, model.AssignmentStatusCompleted)
			where += ` AND (due_date IS NULL OR due_date >= NOW() OR status = $` + itoa(len(args)) + `)`
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assignments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + assignmentColumns + ` FROM assignments` + where +
		` ORDER BY assigned_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assignments, err := collectAssignments(rows)
	if err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

// ApplyProgressTx writes recomputed aggregate state onto the assignment row.
// This is the only place status, completion_percentage and completed_at are
// updated after creation.
func (r *AssignmentRepository) ApplyProgressTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.AssignmentStatus, percentage int, startedAt, completedAt *time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE assignments
		 SET status = $1, completion_percentage = $2, started_at = $3, completed_at = $4
		 WHERE id = $5`,
		status, percentage, startedAt, completedAt, id)
	return err
}

// Delete removes an assignment; module_progress rows cascade.
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	return err
}

// ListOverdue retrieves assignments past their due date that have not been
// reminded since the cooldown cutoff.
func (r *AssignmentRepository) ListOverdue(ctx context.Context, remindedBefore time.Time, limit int) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assignmentColumns+`
		 FROM assignments
		 WHERE due_date IS NOT NULL AND due_date < NOW()
		   AND status <> $1
		   AND (last_reminded_at IS NULL OR last_reminded_at < $2)
		 ORDER BY due_date ASC
		 LIMIT $3`,
		model.AssignmentStatusCompleted, remindedBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// MarkReminded stamps last_reminded_at after a reminder is enqueued.
func (r *AssignmentRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignments SET last_reminded_at = $1 WHERE id = $2`, at, id)
	return err
}

// CountByStatus returns per-status counts for a user's assignments.
func (r *AssignmentRepository) CountByStatus(ctx context.Context, userID uuid.UUID) (map[model.AssignmentStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM assignments WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.AssignmentStatus]int)
	for rows.Next() {
		var status model.AssignmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func collectAssignments(rows pgx.Rows) ([]model.Assignment, error) {
	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := scanAssignment(rows, &a); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
