package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onboardly/onboardly-backend/internal/model"
)

// ModuleRepository handles flow module data access.
type ModuleRepository struct {
	pool *pgxpool.Pool
}

// NewModuleRepository creates a new ModuleRepository.
func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{pool: pool}
}

const moduleColumns = `id, flow_id, title, description, module_type, content_text, content_url,
	position, is_required, estimated_minutes, quiz_definition, created_at, updated_at`

func scanModule(row pgx.Row, m *model.Module) error {
	return row.Scan(&m.ID, &m.FlowID, &m.Title, &m.Description, &m.ModuleType,
		&m.ContentText, &m.ContentURL, &m.Position, &m.IsRequired,
		&m.EstimatedMinutes, &m.Quiz, &m.CreatedAt, &m.UpdatedAt)
}

// Create inserts a new module.
func (r *ModuleRepository) Create(ctx context.Context, m *model.Module) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO modules (flow_id, title, description, module_type, content_text, content_url,
			position, is_required, estimated_minutes, quiz_definition)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		m.FlowID, m.Title, m.Description, m.ModuleType, m.ContentText, m.ContentURL,
		m.Position, m.IsRequired, m.EstimatedMinutes, m.Quiz,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// CreateTx inserts a new module within an existing transaction (flow cloning).
func (r *ModuleRepository) CreateTx(ctx context.Context, tx pgx.Tx, m *model.Module) error {
	return tx.QueryRow(ctx,
		`INSERT INTO modules (flow_id, title, description, module_type, content_text, content_url,
			position, is_required, estimated_minutes, quiz_definition)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		m.FlowID, m.Title, m.Description, m.ModuleType, m.ContentText, m.ContentURL,
		m.Position, m.IsRequired, m.EstimatedMinutes, m.Quiz,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID retrieves a module by ID.
func (r *ModuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Module, error) {
	m := &model.Module{}
	err := scanModule(r.pool.QueryRow(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id), m)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByFlow retrieves all modules for a flow, ordered by position.
func (r *ModuleRepository) ListByFlow(ctx context.Context, flowID uuid.UUID) ([]model.Module, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE flow_id = $1 ORDER BY position`, flowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []model.Module
	for rows.Next() {
		var m model.Module
		if err := scanModule(rows, &m); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// ListByFlowTx retrieves all modules for a flow within a transaction, ordered
// by position. Used when snapshotting modules into a new assignment.
func (r *ModuleRepository) ListByFlowTx(ctx context.Context, tx pgx.Tx, flowID uuid.UUID) ([]model.Module, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE flow_id = $1 ORDER BY position`, flowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []model.Module
	for rows.Next() {
		var m model.Module
		if err := scanModule(rows, &m); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// Update persists mutable module fields.
func (r *ModuleRepository) Update(ctx context.Context, m *model.Module) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE modules
		 SET title = $1, description = $2, content_text = $3, content_url = $4,
			 position = $5, is_required = $6, estimated_minutes = $7, quiz_definition = $8,
			 updated_at = NOW()
		 WHERE id = $9`,
		m.Title, m.Description, m.ContentText, m.ContentURL,
		m.Position, m.IsRequired, m.EstimatedMinutes, m.Quiz, m.ID)
	return err
}

// Delete removes a module.
func (r *ModuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM modules WHERE id = $1`, id)
	return err
}

// UpdatePositionsTx applies a reorder map in a single transaction. Positions
// are first shifted out of range so the unique (flow_id, position) constraint
// never trips mid-update.
func (r *ModuleRepository) UpdatePositionsTx(ctx context.Context, tx pgx.Tx, flowID uuid.UUID, positions map[uuid.UUID]int) error {
	_, err := tx.Exec(ctx,
		`UPDATE modules SET position = position + 100000 WHERE flow_id = $1`, flowID)
	if err != nil {
		return err
	}
	for id, pos := range positions {
		tag, err := tx.Exec(ctx,
			`UPDATE modules SET position = $1, updated_at = NOW()
			 WHERE id = $2 AND flow_id = $3`, pos, id, flowID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
	}
	return nil
}

// CountByFlow returns the number of modules in a flow.
func (r *ModuleRepository) CountByFlow(ctx context.Context, flowID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM modules WHERE flow_id = $1`, flowID).Scan(&count)
	return count, err
}
