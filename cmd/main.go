package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"storefront-service/internal/clients/paypal"
	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/handlers"
	"storefront-service/internal/health"
	"storefront-service/internal/invoice"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
)

// @title Storefront API
// @version 1.0
// @description Catalog, checkout, orders and fulfillment for the Maison Cacao storefront
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8086
// @BasePath /
// @schemes http https
func main() {
	// Check if running health check
	if len(os.Args) > 1 && os.Args[1] == "health" {
		resp, err := http.Get("http://localhost:8086/livez")
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.NewConfig()
	gin.SetMode(cfg.Server.Mode)

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Data source selection: Postgres when configured, otherwise the
	// static fixture store so the storefront runs without a backend.
	var (
		db           *gorm.DB
		productsRepo repository.ProductRepository
		ordersRepo   repository.OrderRepository
		reviewsRepo  repository.ReviewRepository
		rolesRepo    repository.RoleRepository
		settingsRepo repository.SettingsRepository
	)
	if cfg.Database.Configured() {
		var err error
		db, err = initializeDatabase(cfg.Database)
		if err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		if err := runMigrations(db); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
		productsRepo = repository.NewProductRepository(db)
		ordersRepo = repository.NewOrderRepository(db)
		reviewsRepo = repository.NewReviewRepository(db)
		rolesRepo = repository.NewRoleRepository(db)
		settingsRepo = repository.NewSettingsRepository(db)
	} else {
		log.Println("WARNING: DB_HOST not set, running on static fixture data")
		fixtures := repository.NewFixtureStore()
		productsRepo = fixtures.Products()
		ordersRepo = fixtures.Orders()
		reviewsRepo = fixtures.Reviews()
		rolesRepo = fixtures.Roles()
		settingsRepo = fixtures.Settings()
	}

	// Redis is only used to deduplicate webhook retries; missing Redis
	// degrades to no dedup.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Printf("WARNING: Failed to parse Redis URL: %v (webhook dedup disabled)", err)
		} else {
			redisClient = redis.NewClient(opt)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("WARNING: Failed to connect to Redis: %v (webhook dedup disabled)", err)
				redisClient = nil
			} else {
				log.Println("✓ Redis connection established")
			}
		}
	}

	// Optional NATS order events. The typed-nil check keeps a disabled
	// publisher out of the interface value.
	publisher, err := events.NewPublisher(logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
		publisher = nil
	}
	var orderEvents services.OrderEventPublisher
	if publisher != nil {
		orderEvents = publisher
	}

	// Payment, email and invoice collaborators.
	var paypalGateway services.WalletGateway
	if cfg.PayPal.ClientID != "" && cfg.PayPal.Secret != "" {
		paypalGateway = paypal.NewClient(cfg.PayPal.BaseURL, cfg.PayPal.ClientID, cfg.PayPal.Secret)
		log.Println("✓ PayPal gateway configured")
	} else {
		log.Println("WARNING: PayPal credentials not set, wallet capture disabled")
	}

	emailProvider := services.NewEmailProvider(cfg.Email)
	if emailProvider == nil {
		log.Println("WARNING: no email provider configured, confirmation emails disabled")
	}
	emailService := services.NewEmailService(emailProvider, cfg.App.StoreName, cfg.Email.AdminAddress, logger)
	invoiceRenderer := invoice.NewRenderer(cfg.App.StoreName)

	var deduper services.EventDeduper
	if redisClient != nil {
		deduper = services.NewRedisDeduper(redisClient)
	}

	// Services.
	catalogService := services.NewCatalogService(productsRepo)
	productService := services.NewProductService(productsRepo)
	orderService := services.NewOrderService(ordersRepo, productsRepo, orderEvents, logger)
	reviewService := services.NewReviewService(reviewsRepo, productsRepo)
	settingsService := services.NewSettingsService(settingsRepo)
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.SuperAdminEmails, rolesRepo)
	checkoutService := services.NewCheckoutService(cfg.Stripe, productsRepo, logger)
	paypalService := services.NewPayPalService(paypalGateway, orderService, emailService, logger)
	fulfillmentService := services.NewFulfillmentService(orderService, invoiceRenderer, emailService, deduper, orderEvents, logger)

	// Handlers.
	productHandler := handlers.NewProductHandler(catalogService, reviewService)
	orderHandler := handlers.NewOrderHandler(orderService, invoiceRenderer)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, paypalService)
	webhookHandler := handlers.NewWebhookHandler(fulfillmentService, cfg, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	adminHandler := handlers.NewAdminHandler(productService, orderService, reviewService, rolesRepo)

	healthChecker := health.NewHealthChecker(db, cfg.App.Version)

	router := setupRouter(routerDeps{
		cfg:      cfg,
		auth:     authService,
		products: productHandler,
		orders:   orderHandler,
		checkout: checkoutHandler,
		webhooks: webhookHandler,
		reviews:  reviewHandler,
		settings: settingsHandler,
		admin:    adminHandler,
		health:   healthChecker,
	})

	healthChecker.SetReady(true)

	serverAddr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("🚀 Storefront Service starting on %s", serverAddr)
	log.Printf("📚 API Documentation available at http://%s/swagger/index.html", serverAddr)
	log.Printf("🏥 Health endpoints: /health, /livez, /readyz")
	log.Printf("📊 Metrics available at http://%s/metrics", serverAddr)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		if publisher != nil {
			publisher.Close()
		}
		os.Exit(0)
	}()

	if err := router.Run(serverAddr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// initializeDatabase establishes database connection
func initializeDatabase(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established successfully")
	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.RoleAssignment{},
		&models.StorefrontSetting{},
	); err != nil {
		log.Printf("⚠️  AutoMigrate warning: %v", err)
		// Don't fail - the table may already exist with slightly different schema
	}

	log.Println("✅ Database migrations completed successfully")
	return nil
}

type routerDeps struct {
	cfg      *config.Config
	auth     *services.AuthService
	products *handlers.ProductHandler
	orders   *handlers.OrderHandler
	checkout *handlers.CheckoutHandler
	webhooks *handlers.WebhookHandler
	reviews  *handlers.ReviewHandler
	settings *handlers.SettingsHandler
	admin    *handlers.AdminHandler
	health   *health.HealthChecker
}

// setupRouter configures the Gin router with middleware and routes
func setupRouter(deps routerDeps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.SecurityHeaders())

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	router.Use(limiter.Middleware())

	router.Use(middleware.SetupCORS())
	router.Use(health.MetricsMiddleware())

	// Health and observability endpoints (no auth required)
	router.GET("/health", deps.health.HealthHandler)
	router.GET("/livez", deps.health.LivezHandler)
	router.GET("/readyz", deps.health.ReadyzHandler)
	router.GET("/metrics", health.MetricsHandler())

	v1 := router.Group("/api/v1")

	// Public storefront routes.
	{
		v1.GET("/products", deps.products.ListProducts)
		v1.GET("/products/:id", deps.products.GetProduct)
		v1.GET("/products/:id/reviews", deps.products.ListProductReviews)
		v1.GET("/settings/:key", deps.settings.GetSetting)

		v1.POST("/checkout/session", deps.checkout.CreateSession)
		v1.POST("/checkout/paypal/capture", deps.checkout.CapturePayPal)

		// Webhooks authenticate via the provider signature, not a user
		// token.
		v1.POST("/webhooks/stripe", deps.webhooks.HandleStripe)
	}

	// Authenticated customer routes.
	authed := v1.Group("")
	authed.Use(middleware.Auth(deps.auth))
	{
		authed.POST("/reviews", deps.reviews.SubmitReview)
		authed.GET("/orders", deps.orders.ListMyOrders)
		authed.GET("/orders/:id", deps.orders.GetOrder)
		authed.GET("/orders/:id/invoice", deps.orders.DownloadInvoice)
	}

	// Admin routes. The role is resolved and re-checked on every request.
	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(deps.auth))
	admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.POST("/products", deps.admin.CreateProduct)
		admin.PUT("/products/:id", deps.admin.UpdateProduct)
		admin.DELETE("/products/:id", deps.admin.DeleteProduct)
		admin.PATCH("/products/:id/stock", deps.admin.SetStock)

		admin.GET("/orders", deps.admin.ListOrders)
		admin.PATCH("/orders/:id/status", deps.admin.UpdateOrderStatus)

		admin.GET("/reviews", deps.admin.ListReviews)
		admin.POST("/reviews/:id/moderate", deps.admin.ModerateReview)

		admin.GET("/settings/:key", deps.settings.GetSetting)
		admin.PUT("/settings/:key", deps.settings.PutSetting)

		admin.GET("/users", deps.admin.ListUsers)
	}

	// Role management is reserved for super_admin.
	superAdmin := v1.Group("/admin")
	superAdmin.Use(middleware.Auth(deps.auth))
	superAdmin.Use(middleware.RequireRole(models.RoleSuperAdmin))
	{
		superAdmin.PUT("/users/:id/role", deps.admin.SetUserRole)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
