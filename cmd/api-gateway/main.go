package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/silverbladeidn/inventopia-api/api/swagger"
	"github.com/silverbladeidn/inventopia-api/internal/handler"
	"github.com/silverbladeidn/inventopia-api/internal/middleware"
	"github.com/silverbladeidn/inventopia-api/internal/models"
	"github.com/silverbladeidn/inventopia-api/internal/repository"
	"github.com/silverbladeidn/inventopia-api/internal/service"
	"github.com/silverbladeidn/inventopia-api/pkg/cache"
	"github.com/silverbladeidn/inventopia-api/pkg/config"
	"github.com/silverbladeidn/inventopia-api/pkg/database"
	"github.com/silverbladeidn/inventopia-api/pkg/jobs"
	"github.com/silverbladeidn/inventopia-api/pkg/logger"
	corsmiddleware "github.com/silverbladeidn/inventopia-api/pkg/middleware/cors"
	reqidmiddleware "github.com/silverbladeidn/inventopia-api/pkg/middleware/requestid"
)

// @title Inventopia API
// @version 1.0.0
// @description Inventory catalog, stock ledger, and item request workflow API
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	productRepo := repository.NewProductRepository(db)
	requestRepo := repository.NewRequestRepository(db, cfg.Requests.NumberPrefix)
	movementRepo := repository.NewStockMovementRepository(db)

	metricsSvc := service.NewMetricsService()

	var alertQueue *jobs.Queue
	var notifier *service.StockAlertNotifier
	if cfg.Alerts.Enabled {
		alertQueue = jobs.NewQueue("stock-alerts", service.HandleAlertJob(logr), jobs.Options{
			Workers:    cfg.Alerts.Workers,
			BufferSize: cfg.Alerts.QueueBuffer,
			MaxRetries: cfg.Alerts.MaxRetries,
			RetryDelay: cfg.Alerts.RetryDelay,
			Logger:     logr,
		})
		alertQueue.Start(ctx)
		defer alertQueue.Stop()
		notifier = service.NewStockAlertNotifier(alertQueue, cacheRepo, cfg.Alerts.LatchTTL, logr)
	}

	productSvc := service.NewProductService(productRepo, movementRepo, cacheRepo, notifier, nil, metricsSvc, cfg.Catalog.CacheTTL, logr)
	requestSvc := service.NewRequestService(requestRepo, productRepo, movementRepo, notifier, productSvc.Guard(), metricsSvc, logr)
	coordinator := service.NewApprovalCoordinator(requestSvc, logr)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)

	productHandler := handler.NewProductHandler(productSvc)
	requestHandler := handler.NewRequestHandler(requestSvc, coordinator)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))

	products := api.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.GET("/:id/movements", middleware.RequireRoles(models.RoleAdmin, models.RoleStaff), productHandler.Movements)
		products.POST("/:id/stock", middleware.RequireRoles(models.RoleAdmin, models.RoleStaff), productHandler.AdjustStock)
	}

	requests := api.Group("/requests")
	{
		requests.POST("", requestHandler.Create)
		requests.GET("", requestHandler.List)
		requests.GET("/:id", requestHandler.Get)
		requests.GET("/:id/movements", requestHandler.Movements)
		requests.PUT("/:id/items", requestHandler.UpdateItems)
		requests.POST("/:id/submit", requestHandler.Submit)
		requests.POST("/:id/actions", requestHandler.Action)
		requests.POST("/:id/fulfill", middleware.RequireRoles(models.RoleAdmin, models.RoleStaff), requestHandler.Fulfill)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
