package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/onboardly/onboardly-backend/internal/config"
	"github.com/onboardly/onboardly-backend/internal/database"
	"github.com/onboardly/onboardly-backend/internal/logger"
	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/onboardly/onboardly-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Tenant Admin ===")

	// Tenant ID
	fmt.Print("Enter Tenant ID (blank generates a new one): ")
	tenantStr, _ := reader.ReadString('\n')
	tenantStr = strings.TrimSpace(tenantStr)
	tenantID := uuid.New()
	if tenantStr != "" {
		parsed, err := uuid.Parse(tenantStr)
		if err != nil {
			fmt.Println("Error: Tenant ID must be a UUID")
			return
		}
		tenantID = parsed
	}

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// Role
	fmt.Print("Enter Role (tenant_admin/super_admin, default tenant_admin): ")
	roleStr, _ := reader.ReadString('\n')
	roleStr = strings.TrimSpace(roleStr)
	role := model.RoleTenantAdmin
	switch roleStr {
	case "", string(model.RoleTenantAdmin):
	case string(model.RoleSuperAdmin):
		role = model.RoleSuperAdmin
	default:
		fmt.Println("Error: Role must be tenant_admin or super_admin")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.User{
		TenantID:     tenantID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %s (tenant %s)\n",
		admin.Name, admin.Email, admin.ID, admin.TenantID)
}
