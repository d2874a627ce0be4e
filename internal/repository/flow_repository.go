package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onboardly/onboardly-backend/internal/model"
)

// FlowRepository handles onboarding flow data access.
type FlowRepository struct {
	pool *pgxpool.Pool
}

// NewFlowRepository creates a new FlowRepository.
func NewFlowRepository(pool *pgxpool.Pool) *FlowRepository {
	return &FlowRepository{pool: pool}
}

const flowColumns = `f.id, f.tenant_id, f.title, f.description, f.is_active, f.display_order,
	(SELECT COUNT(*) FROM modules m WHERE m.flow_id = f.id) AS module_count,
	f.created_at, f.updated_at`

func scanFlow(row pgx.Row, f *model.Flow) error {
	return row.Scan(&f.ID, &f.TenantID, &f.Title, &f.Description, &f.IsActive,
		&f.DisplayOrder, &f.ModuleCount, &f.CreatedAt, &f.UpdatedAt)
}

// Create inserts a new flow.
func (r *FlowRepository) Create(ctx context.Context, f *model.Flow) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO flows (tenant_id, title, description, is_active, display_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		f.TenantID, f.Title, f.Description, f.IsActive, f.DisplayOrder,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// CreateTx inserts a new flow within an existing transaction (flow cloning).
func (r *FlowRepository) CreateTx(ctx context.Context, tx pgx.Tx, f *model.Flow) error {
	return tx.QueryRow(ctx,
		`INSERT INTO flows (tenant_id, title, description, is_active, display_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		f.TenantID, f.Title, f.Description, f.IsActive, f.DisplayOrder,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// GetByID retrieves a non-deleted flow scoped to a tenant.
func (r *FlowRepository) GetByID(ctx context.Context, id, tenantID uuid.UUID) (*model.Flow, error) {
	f := &model.Flow{}
	err := scanFlow(r.pool.QueryRow(ctx,
		`SELECT `+flowColumns+`
		 FROM flows f
		 WHERE f.id = $1 AND f.tenant_id = $2 AND f.deleted_at IS NULL`, id, tenantID,
	), f)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListByTenant retrieves flows for a tenant, optionally including inactive ones.
func (r *FlowRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]model.Flow, error) {
	query := `SELECT ` + flowColumns + `
		FROM flows f
		WHERE f.tenant_id = $1 AND f.deleted_at IS NULL`
	if !includeInactive {
		query += ` AND f.is_active = TRUE`
	}
	query += ` ORDER BY f.display_order ASC, f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flows []model.Flow
	for rows.Next() {
		var f model.Flow
		if err := scanFlow(rows, &f); err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// ListAllActive retrieves all active flows across tenants (cache prewarm).
func (r *FlowRepository) ListAllActive(ctx context.Context) ([]model.Flow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+flowColumns+`
		 FROM flows f
		 WHERE f.is_active = TRUE AND f.deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flows []model.Flow
	for rows.Next() {
		var f model.Flow
		if err := scanFlow(rows, &f); err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// Update persists mutable flow fields.
func (r *FlowRepository) Update(ctx context.Context, f *model.Flow) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE flows
		 SET title = $1, description = $2, is_active = $3, display_order = $4, updated_at = NOW()
		 WHERE id = $5 AND tenant_id = $6 AND deleted_at IS NULL`,
		f.Title, f.Description, f.IsActive, f.DisplayOrder, f.ID, f.TenantID)
	return err
}

// SoftDelete marks a flow as deleted and inactive.
func (r *FlowRepository) SoftDelete(ctx context.Context, id, tenantID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE flows
		 SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`, id, tenantID)
	return err
}
