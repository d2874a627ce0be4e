package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onboardly/onboardly-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for a tenant.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context, tenantID uuid.UUID) (totalEmployees, totalFlows, totalAssignments, completedAssignments int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND role = $2),
			(SELECT COUNT(*) FROM flows WHERE tenant_id = $1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM assignments WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM assignments WHERE tenant_id = $1 AND status = $3)`,
		tenantID, model.RoleEmployee, model.AssignmentStatusCompleted,
	).Scan(&totalEmployees, &totalFlows, &totalAssignments, &completedAssignments)
	return
}

// GetStatusCounts retrieves the distribution of a tenant's assignments by
// status.
func (r *DashboardRepository) GetStatusCounts(ctx context.Context, tenantID uuid.UUID) (map[model.AssignmentStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM assignments WHERE tenant_id = $1 GROUP BY status`, tenantID)
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

// FlowStats aggregates assignment progress per flow.
type FlowStats struct {
	FlowID            uuid.UUID `json:"flow_id"`
	FlowTitle         string    `json:"flow_title"`
	TotalAssigned     int       `json:"total_assigned"`
	Completed         int       `json:"completed"`
	InProgress        int       `json:"in_progress"`
	NotStarted        int       `json:"not_started"`
	Overdue           int       `json:"overdue"`
	AverageCompletion *float64  `json:"average_completion"`
}

// GetFlowStats retrieves per-flow assignment aggregates for a tenant.
func (r *DashboardRepository) GetFlowStats(ctx context.Context, tenantID uuid.UUID) ([]FlowStats, error) {
	query := `
		SELECT
			f.id,
			f.title,
			COUNT(a.id) AS total_assigned,
			COUNT(a.id) FILTER (WHERE a.status = $2) AS completed,
			COUNT(a.id) FILTER (WHERE a.status = $3) AS in_progress,
			COUNT(a.id) FILTER (WHERE a.status = $4) AS not_started,
			COUNT(a.id) FILTER (WHERE a.due_date IS NOT NULL AND a.due_date < NOW() AND a.status <> $2) AS overdue,
			AVG(a.completion_percentage) AS average_completion
		FROM flows f
		LEFT JOIN assignments a ON a.flow_id = f.id
		WHERE f.tenant_id = $1 AND f.deleted_at IS NULL
		GROUP BY f.id, f.title
		ORDER BY f.title
	`
	rows, err := r.pool.Query(ctx, query, tenantID,
		model.AssignmentStatusCompleted, model.AssignmentStatusInProgress, model.AssignmentStatusNotStarted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []FlowStats
	for rows.Next() {
		var s FlowStats
		if err := rows.Scan(&s.FlowID, &s.FlowTitle, &s.TotalAssigned, &s.Completed,
			&s.InProgress, &s.NotStarted, &s.Overdue, &s.AverageCompletion); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if stats == nil {
		stats = []FlowStats{}
	}
	return stats, rows.Err()
}
