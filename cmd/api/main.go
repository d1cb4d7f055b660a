package main

import (
	"log"
	"os"

	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Textile Trading API
// @version         1.0
// @description     Back office API for textile trading: delivery challans, deals, GST invoices and yarn purchases.
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
	log.Println("Connected to PostgreSQL successfully.")

	// Seller identity printed on tax invoices. The state code decides
	// CGST+SGST vs IGST against each buyer's state.
	company := service.CompanyInfo{
		Name:      os.Getenv("COMPANY_NAME"),
		Address:   os.Getenv("COMPANY_ADDRESS"),
		GSTIN:     os.Getenv("COMPANY_GSTIN"),
		StateCode: os.Getenv("COMPANY_STATE_CODE"),
	}
	if company.StateCode == "" {
		company.StateCode = "27" // Maharashtra
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	partyRepo := repository.NewPartyRepository(db)
	qualityRepo := repository.NewQualityRepository(db)
	challanRepo := repository.NewChallanRepository(db)
	dealRepo := repository.NewDealRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)

	userService := service.NewUserService(userRepo)
	partyService := service.NewPartyService(partyRepo)
	qualityService := service.NewQualityService(qualityRepo, challanRepo, txManager)
	challanService := service.NewChallanService(challanRepo, qualityRepo, dealRepo, auditRepo, txManager, wsHub)
	dealService := service.NewDealService(dealRepo, partyRepo, qualityRepo, challanRepo, invoiceRepo, seqRepo, auditRepo, txManager, wsHub)
	invoiceService := service.NewInvoiceService(invoiceRepo, challanRepo, partyRepo, qualityRepo, seqRepo, auditRepo, txManager, company, wsHub)
	purchaseService := service.NewPurchaseService(purchaseRepo, partyRepo, seqRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)
	reportService := service.NewReportService(reportRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	partyHandler := handler.NewPartyHandler(partyService)
	qualityHandler := handler.NewQualityHandler(qualityService)
	challanHandler := handler.NewChallanHandler(challanService)
	dealHandler := handler.NewDealHandler(dealService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	auditHandler := handler.NewAuditHandler(auditService)
	reportHandler := handler.NewReportHandler(reportService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
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

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	partyHandler.RegisterRoutes(root)
	qualityHandler.RegisterRoutes(root)
	challanHandler.RegisterRoutes(root)
	dealHandler.RegisterRoutes(root)
	invoiceHandler.RegisterRoutes(root)
	purchaseHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)
	reportHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
