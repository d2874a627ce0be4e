package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onboardly/onboardly-backend/internal/config"
	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/onboardly/onboardly-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrFlowNotFound      = errors.New("flow not found")
	ErrModuleNotFound    = errors.New("module not found")
	ErrModuleNotInFlow   = errors.New("module does not belong to this flow")
	ErrPositionTaken     = errors.New("position already taken in this flow")
	ErrQuizUndefined     = errors.New("quiz module requires a quiz definition with at least one question")
	ErrInvalidQuiz       = errors.New("quiz question needs at least two options and a valid correct option")
	ErrReorderIncomplete = errors.New("reorder must cover every module in the flow exactly once")
	ErrFlowNotCached     = errors.New("flow payload not cached")
)

// FlowService handles flow and module management plus the Redis payload cache.
type FlowService struct {
	flowRepo   *repository.FlowRepository
	moduleRepo *repository.ModuleRepository
	pool       *pgxpool.Pool
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewFlowService creates a new FlowService.
func NewFlowService(
	flowRepo *repository.FlowRepository,
	moduleRepo *repository.ModuleRepository,
	pool *pgxpool.Pool,
	rdb *redis.Client,
	log zerolog.Logger,
) *FlowService {
	return &FlowService{
		flowRepo:   flowRepo,
		moduleRepo: moduleRepo,
		pool:       pool,
		rdb:        rdb,
		log:        log.With().Str("component", "flow_service").Logger(),
	}
}

// GetByID retrieves a flow scoped to a tenant.
func (s *FlowService) GetByID(ctx context.Context, id, tenantID uuid.UUID) (*model.Flow, error) {
	flow, err := s.flowRepo.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFlowNotFound
		}
		return nil, err
	}
	return flow, nil
}

// List retrieves a tenant's flows.
func (s *FlowService) List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]model.Flow, error) {
	flows, err := s.flowRepo.ListByTenant(ctx, tenantID, includeInactive)
	if err != nil {
		return nil, err
	}
	if flows == nil {
		flows = []model.Flow{}
	}
	return flows, nil
}

// Create inserts a new flow for a tenant.
func (s *FlowService) Create(ctx context.Context, tenantID uuid.UUID, req *model.CreateFlowRequest) (*model.Flow, error) {
	flow := &model.Flow{
		TenantID:     tenantID,
		Title:        req.Title,
		Description:  req.Description,
		IsActive:     true,
		DisplayOrder: req.DisplayOrder,
	}
	if req.IsActive != nil {
		flow.IsActive = *req.IsActive
	}
	if err := s.flowRepo.Create(ctx, flow); err != nil {
		return nil, fmt.Errorf("create flow: %w", err)
	}
	s.log.Info().Str("flow_id", flow.ID.String()).Msg("Flow created")
	return flow, nil
}

// Update modifies an existing flow and refreshes its cached payload.
func (s *FlowService) Update(ctx context.Context, id, tenantID uuid.UUID, req *model.UpdateFlowRequest) (*model.Flow, error) {
	flow, err := s.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		flow.Title = *req.Title
	}
	if req.Description != nil {
		flow.Description = req.Description
	}
	if req.IsActive != nil {
		flow.IsActive = *req.IsActive
	}
	if req.DisplayOrder != nil {
		flow.DisplayOrder = *req.DisplayOrder
	}

	if err := s.flowRepo.Update(ctx, flow); err != nil {
		return nil, fmt.Errorf("update flow: %w", err)
	}

	if flow.IsActive {
		if err := s.WarmFlowCache(ctx, flow); err != nil {
			s.log.Warn().Err(err).Str("flow_id", id.String()).Msg("Failed to rewarm cache")
		}
	} else {
		s.invalidateCache(ctx, id)
	}
	return flow, nil
}

// Delete soft-deletes a flow and drops its cached payload. Existing
// assignments keep working from their snapshotted ledgers.
func (s *FlowService) Delete(ctx context.Context, id, tenantID uuid.UUID) error {
	if _, err := s.GetByID(ctx, id, tenantID); err != nil {
		return err
	}
	if err := s.flowRepo.SoftDelete(ctx, id, tenantID); err != nil {
		return fmt.Errorf("delete flow: %w", err)
	}
	s.invalidateCache(ctx, id)
	s.log.Info().Str("flow_id", id.String()).Msg("Flow deleted")
	return nil
}

// Clone copies a flow and all its modules under a new title. The clone starts
// inactive so admins can review before assigning.
func (s *FlowService) Clone(ctx context.Context, id, tenantID uuid.UUID, newTitle string) (*model.Flow, error) {
	source, err := s.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	modules, err := s.moduleRepo.ListByFlow(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	clone := &model.Flow{
		TenantID:     tenantID,
		Title:        newTitle,
		Description:  source.Description,
		IsActive:     false,
		DisplayOrder: source.DisplayOrder,
	}
	if err := s.flowRepo.CreateTx(ctx, tx, clone); err != nil {
		return nil, fmt.Errorf("create clone: %w", err)
	}

	for i := range modules {
		m := modules[i]
		m.ID = uuid.Nil
		m.FlowID = clone.ID
		if err := s.moduleRepo.CreateTx(ctx, tx, &m); err != nil {
			return nil, fmt.Errorf("clone module: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	clone.ModuleCount = len(modules)
	s.log.Info().
		Str("source_id", id.String()).
		Str("clone_id", clone.ID.String()).
		Int("modules", len(modules)).
		Msg("Flow cloned")
	return clone, nil
}

// ListModules retrieves a flow's modules ordered by position.
func (s *FlowService) ListModules(ctx context.Context, flowID, tenantID uuid.UUID) ([]model.Module, error) {
	if _, err := s.GetByID(ctx, flowID, tenantID); err != nil {
		return nil, err
	}
	modules, err := s.moduleRepo.ListByFlow(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		modules = []model.Module{}
	}
	return modules, nil
}

// AddModule appends a module to a flow.
func (s *FlowService) AddModule(ctx context.Context, flowID, tenantID uuid.UUID, req *model.CreateModuleRequest) (*model.Module, error) {
	flow, err := s.GetByID(ctx, flowID, tenantID)
	if err != nil {
		return nil, err
	}

	module := &model.Module{
		FlowID:           flowID,
		Title:            req.Title,
		Description:      req.Description,
		ModuleType:       model.ModuleType(req.ModuleType),
		ContentText:      req.ContentText,
		ContentURL:       req.ContentURL,
		Position:         req.Position,
		IsRequired:       true,
		EstimatedMinutes: req.EstimatedMinutes,
		Quiz:             req.Quiz,
	}
	if req.IsRequired != nil {
		module.IsRequired = *req.IsRequired
	}

	if err := validateModule(module); err != nil {
		return nil, err
	}

	if err := s.moduleRepo.Create(ctx, module); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPositionTaken
		}
		return nil, fmt.Errorf("create module: %w", err)
	}

	s.rewarm(ctx, flow)
	return module, nil
}

// UpdateModule modifies a module within a flow.
func (s *FlowService) UpdateModule(ctx context.Context, flowID, moduleID, tenantID uuid.UUID, req *model.UpdateModuleRequest) (*model.Module, error) {
	flow, err := s.GetByID(ctx, flowID, tenantID)
	if err != nil {
		return nil, err
	}
	module, err := s.getFlowModule(ctx, flowID, moduleID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		module.Title = *req.Title
	}
	if req.Description != nil {
		module.Description = req.Description
	}
	if req.ContentText != nil {
		module.ContentText = req.ContentText
	}
	if req.ContentURL != nil {
		module.ContentURL = req.ContentURL
	}
	if req.Position != nil {
		module.Position = *req.Position
	}
	if req.IsRequired != nil {
		module.IsRequired = *req.IsRequired
	}
	if req.Quiz != nil {
		module.Quiz = req.Quiz
	}

	if err := validateModule(module); err != nil {
		return nil, err
	}

	if err := s.moduleRepo.Update(ctx, module); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPositionTaken
		}
		return nil, fmt.Errorf("update module: %w", err)
	}

	s.rewarm(ctx, flow)
	return module, nil
}

// RemoveModule deletes a module from a flow.
func (s *FlowService) RemoveModule(ctx context.Context, flowID, moduleID, tenantID uuid.UUID) error {
	flow, err := s.GetByID(ctx, flowID, tenantID)
	if err != nil {
		return err
	}
	if _, err := s.getFlowModule(ctx, flowID, moduleID); err != nil {
		return err
	}
	if err := s.moduleRepo.Delete(ctx, moduleID); err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	s.rewarm(ctx, flow)
	return nil
}

// ReorderModules applies a full position map to a flow's modules. Every
// module must appear exactly once with a distinct position.
func (s *FlowService) ReorderModules(ctx context.Context, flowID, tenantID uuid.UUID, req *model.ReorderModulesRequest) error {
	flow, err := s.GetByID(ctx, flowID, tenantID)
	if err != nil {
		return err
	}
	modules, err := s.moduleRepo.ListByFlow(ctx, flowID)
	if err != nil {
		return fmt.Errorf("list modules: %w", err)
	}

	if len(req.Positions) != len(modules) {
		return ErrReorderIncomplete
	}
	positions := make(map[uuid.UUID]int, len(req.Positions))
	seen := make(map[int]bool, len(req.Positions))
	for rawID, pos := range req.Positions {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return ErrModuleNotInFlow
		}
		if seen[pos] {
			return ErrPositionTaken
		}
		seen[pos] = true
		positions[id] = pos
	}
	for _, m := range modules {
		if _, ok := positions[m.ID]; !ok {
			return ErrReorderIncomplete
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.moduleRepo.UpdatePositionsTx(ctx, tx, flowID, positions); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrModuleNotInFlow
		}
		return fmt.Errorf("update positions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.rewarm(ctx, flow)
	return nil
}

// WarmFlowCache loads a flow's employee-facing payload from PostgreSQL into
// Redis. Quiz definitions are stripped of correct answers first.
func (s *FlowService) WarmFlowCache(ctx context.Context, flow *model.Flow) error {
	modules, err := s.moduleRepo.ListByFlow(ctx, flow.ID)
	if err != nil {
		return fmt.Errorf("list modules: %w", err)
	}

	employeeModules := make([]model.ModuleForEmployee, len(modules))
	for i, m := range modules {
		em := model.ModuleForEmployee{
			ID:               m.ID,
			Title:            m.Title,
			Description:      m.Description,
			ModuleType:       m.ModuleType,
			ContentText:      m.ContentText,
			ContentURL:       m.ContentURL,
			Position:         m.Position,
			IsRequired:       m.IsRequired,
			EstimatedMinutes: m.EstimatedMinutes,
		}
		if m.Quiz != nil {
			questions := make([]model.QuestionForTaking, len(m.Quiz.Questions))
			for j, q := range m.Quiz.Questions {
				questions[j] = model.QuestionForTaking{Prompt: q.Prompt, Options: q.Options}
			}
			passing := m.Quiz.PassingScore
			if passing <= 0 {
				passing = model.DefaultPassingScore
			}
			em.Quiz = &model.QuizForTaking{Questions: questions, PassingScore: passing}
		}
		employeeModules[i] = em
	}

	payload := model.FlowPayload{
		FlowID:      flow.ID,
		Title:       flow.Title,
		Description: flow.Description,
		Modules:     employeeModules,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	key := config.CacheKey.FlowPayloadKey(flow.ID.String())
	if err := s.rdb.Set(ctx, key, payloadJSON, 0).Err(); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("flow_id", flow.ID.String()).
		Int("modules", len(modules)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all active flows into Redis on application startup.
func (s *FlowService) PrewarmAllCaches(ctx context.Context) error {
	flows, err := s.flowRepo.ListAllActive(ctx)
	if err != nil {
		return fmt.Errorf("list active flows: %w", err)
	}

	if len(flows) == 0 {
		s.log.Info().Msg("No active flows to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(flows)).Msg("Prewarming active flows...")

	warmed := 0
	for i := range flows {
		if err := s.WarmFlowCache(ctx, &flows[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("flow_id", flows[i].ID.String()).
				Msg("Failed to warm flow, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(flows)).
		Msg("Prewarming complete")
	return nil
}

// GetFlowPayload retrieves the cached employee payload, falling back to a
// fresh warm on cache miss.
func (s *FlowService) GetFlowPayload(ctx context.Context, flowID, tenantID uuid.UUID) (*model.FlowPayload, error) {
	key := config.CacheKey.FlowPayloadKey(flowID.String())
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("get payload: %w", err)
		}
		flow, ferr := s.GetByID(ctx, flowID, tenantID)
		if ferr != nil {
			return nil, ferr
		}
		if werr := s.WarmFlowCache(ctx, flow); werr != nil {
			return nil, werr
		}
		data, err = s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			return nil, ErrFlowNotCached
		}
	}

	var payload model.FlowPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &payload, nil
}

func (s *FlowService) getFlowModule(ctx context.Context, flowID, moduleID uuid.UUID) (*model.Module, error) {
	module, err := s.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}
	if module.FlowID != flowID {
		return nil, ErrModuleNotInFlow
	}
	return module, nil
}

func (s *FlowService) rewarm(ctx context.Context, flow *model.Flow) {
	if err := s.WarmFlowCache(ctx, flow); err != nil {
		s.log.Warn().Err(err).Str("flow_id", flow.ID.String()).Msg("Failed to rewarm cache")
	}
}

func (s *FlowService) invalidateCache(ctx context.Context, flowID uuid.UUID) {
	key := config.CacheKey.FlowPayloadKey(flowID.String())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("flow_id", flowID.String()).Msg("Failed to drop cached payload")
	}
}

// validateModule enforces per-type content rules.
func validateModule(m *model.Module) error {
	if m.ModuleType == model.ModuleTypeQuiz {
		if m.Quiz == nil || len(m.Quiz.Questions) == 0 {
			return ErrQuizUndefined
		}
		for _, q := range m.Quiz.Questions {
			if len(q.Options) < 2 || q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
				return ErrInvalidQuiz
			}
		}
	} else {
		m.Quiz = nil
	}
	return nil
}
