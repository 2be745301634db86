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

	"clinicCommission/app/echo-server/router"
	commissionService "clinicCommission/business/commission"
	planService "clinicCommission/business/plan"
	repService "clinicCommission/business/rep"
	saleService "clinicCommission/business/sale"
	"clinicCommission/internal/middleware"
	psqlRepo "clinicCommission/internal/repository/postgres"
	redisRepo "clinicCommission/internal/repository/redis"
	"clinicCommission/internal/rest"
	"clinicCommission/pkg/config"
	"clinicCommission/pkg/database"
	redisdb "clinicCommission/pkg/database/redis"
	"clinicCommission/pkg/logger"
	"clinicCommission/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting clinic commission service", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	metrics.Init()

	// Init validate
	validate := validator.New()

	// Init repo
	planRepo := psqlRepo.NewPlanRepository(db)
	repRepo := psqlRepo.NewRepRepository(db)
	saleRepo := psqlRepo.NewSaleRepository(db)
	commissionRepo := psqlRepo.NewCommissionRepository(db)
	planCache := redisRepo.NewPlanCache(redisClient, time.Duration(cfg.Commission.PlanCacheTTLSeconds)*time.Second)

	// Init service
	policy := commissionService.Policy{ClawbackWindowDays: cfg.Commission.ClawbackWindowDays}
	planSvc := planService.NewPlanService(planRepo, planCache, validate)
	repSvc := repService.NewRepService(repRepo, planRepo, validate, cfg.App.RepInviteKey)
	saleSvc := saleService.NewSaleService(saleRepo, repRepo, planRepo, planCache, commissionRepo, policy)
	commissionSvc := commissionService.NewService(commissionRepo)

	// Init handler
	planHandler := rest.NewPlanHandler(planSvc)
	repHandler := rest.NewRepHandler(repSvc)
	saleHandler := rest.NewSaleHandler(saleSvc)
	commissionHandler := rest.NewCommissionHandler(commissionSvc)
	webhookHandler := rest.NewRefundWebhookHandler(saleSvc, cfg.Webhook.RefundVerificationToken)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupRepRoutes(api, repHandler, authRequired, adminOnly)
	router.SetupPlanRoutes(api, planHandler, authRequired, adminOnly)
	router.SetupSaleRoutes(api, saleHandler, authRequired, adminOnly)
	router.SetupCommissionRoutes(api, commissionHandler, authRequired, adminOnly)
	router.SetWebhookRoutes(api, webhookHandler)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
