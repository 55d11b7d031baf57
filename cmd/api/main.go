package main

import (
	"log"
	"os"

	_ "crm-backend/api/swagger" // swagger docs
	"crm-backend/internal/database"
	"crm-backend/internal/handler"
	"crm-backend/internal/middleware"
	"crm-backend/internal/otp"
	"crm-backend/internal/repository"
	"crm-backend/internal/service"
	"crm-backend/internal/sms"
	"crm-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Visit CRM API
// @version         1.0
// @description     Multi-tenant CRM: admins register via phone OTP and track customer visits; a super admin oversees all tenants.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	middleware.InitAuthMiddleware(db)

	// Set up WebSocket Hub for the live check-in feed
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// OTP codes are only echoed in API responses with this explicit opt-in
	otpDebug := os.Getenv("OTP_DEBUG") == "true"
	if otpDebug && os.Getenv("GIN_MODE") == "release" {
		log.Println("WARNING: OTP_DEBUG is enabled in release mode, OTP codes will leak into API responses")
	}

	otpCache := otp.NewCache(otp.DefaultTTL)
	defer otpCache.Stop()

	smsSender := sms.NewSenderFromEnv()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	adminRepo := repository.NewAdminRepository(db)
	superAdminRepo := repository.NewSuperAdminRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	authService := service.NewAuthService(adminRepo, otpCache, smsSender, otpDebug)
	customerService := service.NewCustomerService(customerRepo, adminRepo, txManager, smsSender, wsHub)
	superAdminService := service.NewSuperAdminService(superAdminRepo, adminRepo, customerRepo, txManager)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(authService)
	customerHandler := handler.NewCustomerHandler(customerService)
	superAdminHandler := handler.NewSuperAdminHandler(superAdminService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint (super-admin live feed)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	adminHandler.RegisterRoutes(router.Group(""))
	customerHandler.RegisterRoutes(router.Group(""))
	superAdminHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
