package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onboardly/onboardly-backend/internal/model"
)

// ProgressRepository handles module progress ledger data access.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

const progressColumns = `id, assignment_id, module_id, module_title, position, is_required,
	module_type, quiz_snapshot, is_completed, completed_at, time_spent_minutes,
	quiz_score, quiz_passed, notes, created_at, updated_at`

func scanProgress(row pgx.Row, p *model.ModuleProgress) error {
	return row.Scan(&p.ID, &p.AssignmentID, &p.ModuleID, &p.ModuleTitle, &p.Position,
		&p.IsRequired, &p.ModuleType, &p.Quiz, &p.IsCompleted, &p.CompletedAt,
		&p.TimeSpentMinutes, &p.QuizScore, &p.QuizPassed, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt)
}

// CreateBatchTx inserts the full progress ledger for a new assignment in one
// round trip.
func (r *ProgressRepository) CreateBatchTx(ctx context.Context, tx pgx.Tx, entries []model.ModuleProgress) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range entries {
		batch.Queue(
			`INSERT INTO module_progress (assignment_id, module_id, module_title, position,
				is_required, module_type, quiz_snapshot)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.AssignmentID, p.ModuleID, p.ModuleTitle, p.Position,
			p.IsRequired, p.ModuleType, p.Quiz)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range entries {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

// GetByAssignmentAndModuleTx retrieves one ledger entry within a transaction.
func (r *ProgressRepository) GetByAssignmentAndModuleTx(ctx context.Context, tx pgx.Tx, assignmentID, moduleID uuid.UUID) (*model.ModuleProgress, error) {
	p := &model.ModuleProgress{}
	err := scanProgress(tx.QueryRow(ctx,
		`SELECT `+progressColumns+`
		 FROM module_progress
		 WHERE assignment_id = $1 AND module_id = $2`, assignmentID, moduleID), p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByAssignment retrieves the full ledger for an assignment, ordered by
// position.
func (r *ProgressRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.ModuleProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+progressColumns+`
		 FROM module_progress WHERE assignment_id = $1
		 ORDER BY position`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProgress(rows)
}

// ListByAssignmentTx is ListByAssignment within a transaction, used for
// recomputing aggregates under the assignment row lock.
func (r *ProgressRepository) ListByAssignmentTx(ctx context.Context, tx pgx.Tx, assignmentID uuid.UUID) ([]model.ModuleProgress, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+progressColumns+`
		 FROM module_progress WHERE assignment_id = $1
		 ORDER BY position`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProgress(rows)
}

// UpdateCompletionTx marks a ledger entry completed with optional notes and
// accumulated time.
func (r *ProgressRepository) UpdateCompletionTx(ctx context.Context, tx pgx.Tx, p *model.ModuleProgress) error {
	return tx.QueryRow(ctx,
		`UPDATE module_progress
		 SET is_completed = $1, completed_at = $2, time_spent_minutes = $3, notes = $4,
			 updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		p.IsCompleted, p.CompletedAt, p.TimeSpentMinutes, p.Notes, p.ID,
	).Scan(&p.UpdatedAt)
}

// UpdateQuizResultTx records a graded quiz attempt. Completion fields are only
// touched when the attempt passed.
func (r *ProgressRepository) UpdateQuizResultTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, score int, passed bool, completedAt *time.Time, timeSpent int) error {
	_, err := tx.Exec(ctx,
		`UPDATE module_progress
		 SET quiz_score = $1, quiz_passed = $2,
			 is_completed = CASE WHEN $2 THEN TRUE ELSE is_completed END,
			 completed_at = CASE WHEN $2 THEN COALESCE(completed_at, $3) ELSE completed_at END,
			 time_spent_minutes = $4, updated_at = NOW()
		 WHERE id = $5`,
		score, passed, completedAt, timeSpent, id)
	return err
}

func collectProgress(rows pgx.Rows) ([]model.ModuleProgress, error) {
	var entries []model.ModuleProgress
	for rows.Next() {
		var p model.ModuleProgress
		if err := scanProgress(rows, &p); err != nil {
			return nil, err
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}
