package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/onboardly/onboardly-backend/internal/repository"
)

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	TotalEmployees       int                            `json:"total_employees"`
	TotalFlows           int                            `json:"total_flows"`
	TotalAssignments     int                            `json:"total_assignments"`
	CompletedAssignments int                            `json:"completed_assignments"`
	StatusCounts         map[model.AssignmentStatus]int `json:"status_counts"`
	FlowStats            []repository.FlowStats         `json:"flow_stats"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// GetDashboardData fetches all dashboard metrics for a tenant.
func (s *DashboardService) GetDashboardData(ctx context.Context, tenantID uuid.UUID) (*DashboardData, error) {
	employees, flows, assignments, completed, err := s.repo.GetSummaryCounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.GetStatusCounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	flowStats, err := s.repo.GetFlowStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		TotalEmployees:       employees,
		TotalFlows:           flows,
		TotalAssignments:     assignments,
		CompletedAssignments: completed,
		StatusCounts:         statusCounts,
		FlowStats:            flowStats,
	}, nil
}
