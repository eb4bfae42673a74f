package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpAdapter "github.com/trude-tech/trude-carwash/internal/adapters/http"
	"github.com/trude-tech/trude-carwash/internal/adapters/postgres"
	redisAdapter "github.com/trude-tech/trude-carwash/internal/adapters/redis"
	"github.com/trude-tech/trude-carwash/internal/config"
	"github.com/trude-tech/trude-carwash/internal/events"
	"github.com/trude-tech/trude-carwash/internal/middleware"
	"github.com/trude-tech/trude-carwash/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}

	if cfg.RedisPassword != "" {
		redisOpts.Password = cfg.RedisPassword
	}

	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Ping Redis to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("✓ Redis connection established")

	// Connect to PostgreSQL
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer dbpool.Close()

	// Ping PostgreSQL to verify connection
	if err := dbpool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("✓ PostgreSQL connection established")

	// Initialize repositories using GORM
	postgresRepo, err := postgres.NewRepository(cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to initialize postgres repository: %v", err)
	}

	// Initialize Redis summary cache
	summaryCache := redisAdapter.NewCache(rdb)

	// Initialize event bus for dashboard SSE
	eventBus := events.NewEventBus()

	// Initialize services
	authService := service.NewAuthService(postgresRepo.UserRepository(), cfg.JWTSecret)
	salesService := service.NewSalesService(
		postgresRepo.CarWashSaleRepository(),
		postgresRepo.DrinkSaleRepository(),
		summaryCache,
		eventBus,
	)
	reportService := service.NewReportService(
		postgresRepo.CarWashSaleRepository(),
		postgresRepo.DrinkSaleRepository(),
		summaryCache,
		cfg.BusinessName,
	)

	// Initialize HTTP handlers
	salesHandler := httpAdapter.NewSalesHandler(authService, salesService)
	dashboardHandler := httpAdapter.NewDashboardHandler(reportService, eventBus)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      cfg.BusinessName + " API",
		ServerHeader: "Fiber",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"project": "trude-carwash",
		})
	})

	// Auth routes
	auth := app.Group("/api/auth")
	auth.Post("/login", salesHandler.Login)
	auth.Post("/logout", salesHandler.Logout)

	// Protected routes
	protected := middleware.AuthMiddleware(authService)
	auth.Get("/me", protected, salesHandler.GetMe)

	carWash := app.Group("/api/carwash-sales", protected)
	carWash.Post("/", salesHandler.CreateCarWashSale)
	carWash.Get("/", salesHandler.ListCarWashSales)
	carWash.Put("/batch", salesHandler.SaveCarWashBatch)
	carWash.Put("/:id", salesHandler.UpdateCarWashSale)
	carWash.Post("/:id/mark-paid", salesHandler.MarkCarWashSalePaid)

	drinks := app.Group("/api/drink-sales", protected)
	drinks.Post("/", salesHandler.CreateDrinkSale)
	drinks.Get("/", salesHandler.ListDrinkSales)
	drinks.Put("/batch", salesHandler.SaveDrinkBatch)
	drinks.Put("/:id", salesHandler.UpdateDrinkSale)
	drinks.Post("/:id/mark-paid", salesHandler.MarkDrinkSalePaid)
	drinks.Delete("/:id", salesHandler.DeleteDrinkSale)

	dashboard := app.Group("/api/dashboard", protected)
	dashboard.Get("/summary", dashboardHandler.GetSummary)
	dashboard.Get("/trend", dashboardHandler.GetTrend)
	dashboard.Get("/payment-methods", dashboardHandler.GetPaymentMethodBreakdown)
	dashboard.Get("/sources", dashboardHandler.GetSourceBreakdown)
	dashboard.Get("/events", dashboardHandler.SSEEvents)

	reports := app.Group("/api/reports", protected)
	reports.Get("/:kind", dashboardHandler.GetReport)
	reports.Get("/:kind/export", dashboardHandler.GetReport)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.AppPort)
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
