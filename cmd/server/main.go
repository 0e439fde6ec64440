package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/auth"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/cache"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/chat"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/config"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/database"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/db"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/handlers"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/health"
	h "github.com/algorhythmicdev/reclame-OMS-sub000/internal/http"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/middleware"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/monitoring"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/repositories"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/services"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/storage"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis cache is optional: every cache helper degrades to a no-op
	if err := cache.Init(cfg); err != nil {
		log.Printf("[Redis] Cache unavailable: %v", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run embedded database migrations on startup
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)
	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool)
	settingRepo := repositories.NewSettingRepository(pool)
	requestLogRepo := repositories.NewRequestLogRepository(pool)

	// Object storage (file revisions). Optional in dev: uploads return
	// 503 until R2 credentials are configured.
	var storageService *storage.Service
	if svc, err := storage.New(ctx, cfg); err != nil {
		log.Printf("[Storage] Object storage disabled: %v", err)
	} else {
		storageService = svc
	}

	// Factory floor chat hub
	hub := chat.NewHub()

	// Services
	orderService := services.NewOrderService(orderRepo)
	crService := services.NewChangeRequestService(orderService, hub)
	revisionService := services.NewRevisionService(orderService, hub)
	userService := services.NewUserService(userRepo, jwtManager)
	settingService := services.NewSettingService(settingRepo, orderRepo)
	reportService := services.NewReportService(orderService)

	metricsCollector := services.NewMetricsCollector(orderRepo)
	metricsCollector.Start()
	defer metricsCollector.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	orderHandler := handlers.NewOrderHandler(orderService)
	vcsHandler := handlers.NewVCSHandler(orderService)
	crHandler := handlers.NewChangeRequestHandler(crService)
	revisionHandler := handlers.NewRevisionHandler(revisionService, storageService)
	reportHandler := handlers.NewReportHandler(reportService)
	settingHandler := handlers.NewSettingHandler(settingService)
	monitoringHandler := handlers.NewMonitoringHandler(monitoring.NewCollector(pool), metricsCollector, requestLogRepo)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)
	apiLogging := middleware.NewAPILoggingMiddleware(requestLogRepo)

	router := h.NewRouter(
		authHandler,
		userHandler,
		orderHandler,
		vcsHandler,
		crHandler,
		revisionHandler,
		reportHandler,
		settingHandler,
		monitoringHandler,
		healthHandler,
		hub,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(
		apiLogging.Handler(
			corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
