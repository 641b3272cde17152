package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/auth"
	"github.com/gaitguard/gaitguard-engine/pkg/config"
	"github.com/gaitguard/gaitguard-engine/pkg/database"
	"github.com/gaitguard/gaitguard-engine/pkg/handlers"
	"github.com/gaitguard/gaitguard-engine/pkg/llm"
	"github.com/gaitguard/gaitguard-engine/pkg/logging"
	"github.com/gaitguard/gaitguard-engine/pkg/mcp"
	"github.com/gaitguard/gaitguard-engine/pkg/mcp/tools"
	"github.com/gaitguard/gaitguard-engine/pkg/messaging"
	"github.com/gaitguard/gaitguard-engine/pkg/middleware"
	"github.com/gaitguard/gaitguard-engine/pkg/repositories"
	"github.com/gaitguard/gaitguard-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", cfg.Database.Host),
		zap.Bool("redis", cfg.Redis.Host != ""),
		zap.Bool("poke_live", cfg.Poke.IsAvailable()))

	if cfg.SessionSecret == "" {
		logger.Fatal("SESSION_SECRET must be set")
	}

	ctx := context.Background()

	// Database pool and migrations
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	// Redis is optional; without it daily check-in dedupe is disabled.
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Model providers. Both are optional: without a vision client the
	// analysis endpoints return errors, without a coach the records degrade
	// to the statically resolved plan.
	var visionClient llm.VisionClient
	if cfg.Vision.APIKey != "" {
		vc, err := llm.NewVisionClient(&llm.VisionConfig{
			Endpoint: cfg.Vision.Endpoint,
			Model:    cfg.Vision.Model,
			APIKey:   cfg.Vision.APIKey,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create vision client", zap.Error(err))
		}
		visionClient = vc
	} else {
		logger.Warn("VISION_API_KEY not set; analysis pipeline disabled")
	}

	var coachClient llm.CoachClient
	if cfg.Coach.APIKey != "" {
		cc, err := llm.NewCoachClient(&llm.CoachConfig{
			APIKey:    cfg.Coach.APIKey,
			Model:     cfg.Coach.Model,
			MaxTokens: cfg.Coach.MaxTokens,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create coach client", zap.Error(err))
		}
		coachClient = cc
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set; coaching and consultation disabled")
	}

	messenger := messaging.NewClient(&cfg.Poke, logger)

	// Repositories and services
	analysisRepo := repositories.NewAnalysisRepository(db)
	eventRepo := repositories.NewPatientEventRepository(db)

	analysisService := services.NewAnalysisService(visionClient, coachClient, analysisRepo, eventRepo, logger)
	checkinService := services.NewCheckinService(eventRepo, messenger, redisClient, logger)
	consultationService := services.NewConsultationService(coachClient, logger)

	// Auth
	verifier, err := auth.NewVerifier(&auth.VerifierConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		Secret:             cfg.Auth.JWTSecret,
		JWKSURL:            cfg.Auth.JWKSURL,
		Issuer:             cfg.Auth.Issuer,
	})
	if err != nil {
		logger.Fatal("Failed to create token verifier", zap.Error(err))
	}
	defer verifier.Close()
	authMiddleware := auth.NewMiddleware(verifier, logger)

	auth.InitSessionStore(cfg.SessionSecret, cfg.Env != "local")

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewPlansHandler(logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAnalysesHandler(analysisService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewCheckinsHandler(checkinService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPokeHandler(checkinService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewConsultationHandler(consultationService, logger).RegisterRoutes(mux, authMiddleware)

	// MCP server for agent access to the check-in tools
	mcpServer := mcp.NewServer("gaitguard-engine", cfg.Version, logger)
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	tools.RegisterCheckinTools(mcpServer.MCP(), &tools.CheckinToolDeps{
		Checkins: checkinService,
		Logger:   logger,
	})
	mux.Handle("/mcp", authMiddleware.RequireAuth(mcpServer.NewStreamableHTTPServer().ServeHTTP))

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting gaitguard-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
