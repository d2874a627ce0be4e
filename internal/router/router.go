package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/onboardly/onboardly-backend/internal/config"
	"github.com/onboardly/onboardly-backend/internal/handler"
	"github.com/onboardly/onboardly-backend/internal/middleware"
	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/onboardly/onboardly-backend/internal/response"
	"github.com/onboardly/onboardly-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth           *handler.AuthHandler
	EmployeePortal *handler.EmployeePortalHandler
	Flow           *handler.FlowHandler
	Assignment     *handler.AssignmentHandler
	User           *handler.UserHandler
	Dashboard      *handler.DashboardHandler
	WS             *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Employee Group (Employee JWT) ──────────────────────────────
	employeeAPI := router.Group("/api/v1/employee")
	employeeAPI.Use(middleware.RequireEmployeeJWT(authService))
	{
		employeeAPI.GET("/dashboard", handlers.EmployeePortal.Dashboard)
		employeeAPI.GET("/assignments", handlers.EmployeePortal.ListMyAssignments)
		employeeAPI.GET("/assignments/:assignment_id", handlers.EmployeePortal.GetMyAssignment)
		employeeAPI.GET("/assignments/:assignment_id/content", handlers.EmployeePortal.GetFlowContent)
		employeeAPI.POST("/assignments/:assignment_id/modules/:module_id/complete", handlers.EmployeePortal.CompleteModule)
		employeeAPI.POST("/assignments/:assignment_id/modules/:module_id/quiz", handlers.EmployeePortal.SubmitQuiz)
	}

	// ─── 3. WebSocket Group (Employee WS Auth via ?token=) ─────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireEmployeeWSAuth(authService))
	{
		ws.GET("/employee/assignments/:assignment_id/stream", handlers.WS.AssignmentStream)
	}

	// ─── 4. Admin Group (Admin JWT + role check) ───────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireAdminJWT(authService),
		middleware.RequireAnyRole(model.RoleTenantAdmin, model.RoleSuperAdmin),
	)
	{
		// Flow catalog
		adminAPI.GET("/flows", handlers.Flow.ListFlows)
		adminAPI.POST("/flows", handlers.Flow.CreateFlow)
		adminAPI.GET("/flows/:flow_id", handlers.Flow.GetFlow)
		adminAPI.PATCH("/flows/:flow_id", handlers.Flow.UpdateFlow)
		adminAPI.DELETE("/flows/:flow_id", handlers.Flow.DeleteFlow)
		adminAPI.POST("/flows/:flow_id/clone", handlers.Flow.CloneFlow)
		adminAPI.POST("/flows/:flow_id/refresh-cache", handlers.Flow.RefreshFlowCache)

		// Flow modules
		adminAPI.POST("/flows/:flow_id/modules", handlers.Flow.AddModule)
		adminAPI.PATCH("/flows/:flow_id/modules/:module_id", handlers.Flow.UpdateModule)
		adminAPI.DELETE("/flows/:flow_id/modules/:module_id", handlers.Flow.RemoveModule)
		adminAPI.PUT("/flows/:flow_id/modules/positions", handlers.Flow.ReorderModules)

		// Assignments
		adminAPI.POST("/assignments", handlers.Assignment.Assign)
		adminAPI.POST("/assignments/bulk", handlers.Assignment.BulkAssign)
		adminAPI.GET("/assignments", handlers.Assignment.ListAssignments)
		adminAPI.GET("/assignments/:assignment_id", handlers.Assignment.GetAssignment)
		adminAPI.DELETE("/assignments/:assignment_id", handlers.Assignment.DeleteAssignment)

		// Users
		adminAPI.GET("/users", handlers.User.ListEmployees)
		adminAPI.POST("/users", handlers.User.CreateEmployee)

		// Dashboard
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)
	}

	return router
}
