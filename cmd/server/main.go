package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/sheetgen/server/internal/auth"
	"github.com/sheetgen/server/internal/config"
	"github.com/sheetgen/server/internal/generation"
	httpadapter "github.com/sheetgen/server/internal/interfaces/http"
	"github.com/sheetgen/server/internal/repository"
	"github.com/sheetgen/server/pkg/database"
	"github.com/sheetgen/server/pkg/utils"
)

func main() {
	// Optional .env for local development; environment wins over file.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting spreadsheet generation service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	generationRepo := repository.NewGenerationRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	statusRepo := repository.NewStatusRepository(db.DB, logger)

	generationService := generation.NewService(generationRepo, logger)
	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret, logger)
	oauth := auth.NewOAuth(auth.OAuthConfig{
		GoogleClientID:    cfg.OAuth.GoogleClientID,
		MicrosoftClientID: cfg.OAuth.MicrosoftClientID,
		MicrosoftTenantID: cfg.OAuth.MicrosoftTenantID,
	})

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		AllowOrigins: cfg.CORS.AllowOrigins,
	}, generationService, authService, oauth, statusRepo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
