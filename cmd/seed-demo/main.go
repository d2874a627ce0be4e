package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/onboardly/onboardly-backend/internal/config"
	"github.com/onboardly/onboardly-backend/internal/database"
	"github.com/onboardly/onboardly-backend/internal/logger"
	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/onboardly/onboardly-backend/internal/repository"
	"github.com/onboardly/onboardly-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	userRepo := repository.NewUserRepository(pool)
	flowRepo := repository.NewFlowRepository(pool)
	moduleRepo := repository.NewModuleRepository(pool)

	flowService := service.NewFlowService(flowRepo, moduleRepo, pool, rdb, log)

	fmt.Println("=== Seeding Demo Tenant ===")

	tenantID := uuid.New()
	fmt.Printf("Tenant ID: %s\n", tenantID)

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	// Tenant admin
	admin := &model.User{
		TenantID:     tenantID,
		Name:         "Demo Admin",
		Email:        "admin@demo.onboardly.io",
		PasswordHash: string(hash),
		Role:         model.RoleTenantAdmin,
		IsActive:     true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}
	fmt.Printf("Created admin %s (password: demo-password)\n", admin.Email)

	// Employees
	names := []string{
		"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
		"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
	}

	successCount := 0
	for i, name := range names {
		employee := &model.User{
			TenantID:     tenantID,
			Name:         name,
			Email:        fmt.Sprintf("employee%d@demo.onboardly.io", i+1),
			PasswordHash: string(hash),
			Role:         model.RoleEmployee,
			IsActive:     true,
		}
		if err := userRepo.Create(ctx, employee); err != nil {
			fmt.Printf("Error creating employee %s: %v\n", employee.Email, err)
		} else {
			successCount++
		}
	}
	fmt.Printf("Created %d/%d employees (password: demo-password)\n", successCount, len(names))

	// Onboarding flow with three modules
	description := "Company basics for the first two weeks."
	flow, err := flowService.Create(ctx, tenantID, &model.CreateFlowRequest{
		Title:       "New Hire Orientation",
		Description: &description,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create flow")
	}
	fmt.Printf("Created flow %s (%s)\n", flow.Title, flow.ID)

	required := true
	handbook := "Read the employee handbook and company values."
	videoURL := "https://videos.demo.onboardly.io/security-basics.mp4"
	modules := []model.CreateModuleRequest{
		{
			Title:       "Welcome to the Company",
			ModuleType:  string(model.ModuleTypeText),
			Position:    1,
			IsRequired:  &required,
			ContentText: &handbook,
		},
		{
			Title:      "Security Basics",
			ModuleType: string(model.ModuleTypeVideo),
			Position:   2,
			IsRequired: &required,
			ContentURL: &videoURL,
		},
		{
			Title:      "Orientation Quiz",
			ModuleType: string(model.ModuleTypeQuiz),
			Position:   3,
			IsRequired: &required,
			Quiz: &model.QuizDefinition{
				PassingScore: 70,
				Questions: []model.QuizQuestion{
					{
						Prompt:        "Who do you report a security incident to?",
						Options:       []string{"Nobody", "The security team", "A coworker"},
						CorrectOption: 1,
					},
					{
						Prompt:        "Where are the company values documented?",
						Options:       []string{"The employee handbook", "Nowhere"},
						CorrectOption: 0,
					},
				},
			},
		},
	}

	for _, req := range modules {
		if _, err := flowService.AddModule(ctx, flow.ID, tenantID, &req); err != nil {
			log.Fatal().Err(err).Str("module", req.Title).Msg("Failed to create module")
		}
	}
	fmt.Printf("Created %d modules\n", len(modules))

	fmt.Println("\nSeed completed!")
}
