package main

import (
	"log"

	_ "authz/api/swagger" // swagger docs
	"authz/internal/config"
	"authz/internal/database"
	"authz/internal/handler"
	"authz/internal/middleware"
	"authz/internal/model"
	"authz/internal/repository"
	"authz/internal/service"
	"authz/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           RBAC Authorization API
// @version         1.0
// @description     Role-based access control with token-backed revocable sessions.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket hub for the security event feed
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	rbacRepo := repository.NewRBACRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	authService := service.NewAuthService(userRepo, sessionRepo, auditRepo, wsHub, service.AuthConfig{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL,
	})
	permService := service.NewPermissionService(rbacRepo)
	userService := service.NewUserService(userRepo, rbacRepo, auditRepo, authService, txManager)
	adminService := service.NewRBACAdminService(rbacRepo, userRepo, auditRepo, wsHub)
	productService := service.NewProductService(productRepo, permService)
	orderService := service.NewOrderService(orderRepo, productRepo, permService)
	reportService := service.NewReportService(reportRepo, permService)
	auditService := service.NewAuditService(auditRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	permHandler := handler.NewPermissionHandler(adminService, permService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	reportHandler := handler.NewReportHandler(reportService)
	auditHandler := handler.NewAuditHandler(auditService, permService)

	// Set up Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Identity resolution runs on every request; guards reject later
	router.Use(middleware.Identify(authService))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket event feed: full session resolution plus the admin role
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, func(c *gin.Context, token string) (bool, error) {
			user, err := authService.ResolveUser(c.Request.Context(), token)
			if err != nil || user == nil {
				return false, err
			}
			return permService.HasRole(c.Request.Context(), user.ID, model.AdminRoleName)
		})
	})

	// Register API routes
	authHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))
	permHandler.RegisterRoutes(router.Group(""))
	productHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
