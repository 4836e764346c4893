package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/config"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/jobs"
	"github.com/greengate/screening/internal/routes"
	"github.com/greengate/screening/internal/services"
	"github.com/greengate/screening/internal/utils"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	db, err := connectDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&entities.AdminUser{},
		&entities.APIKey{},
		&entities.Plot{},
		&entities.ReferenceLayer{},
		&entities.DatasetVersion{},
		&entities.ValidationReport{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	zapLogger, err := newZapLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			log.Printf("failed to sync logger: %v", err)
		}
	}()
	logger := utils.NewLoggerAdapter(zapLogger)

	app := services.NewAppContext(db, cfg, logger)

	housekeeping := jobs.New(db, app.Registry, logger)
	if err := housekeeping.Start(); err != nil {
		log.Fatalf("failed to start housekeeping jobs: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	routes.Register(router, app)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		log.Printf("starting greengate-screening on %s", addr)
		if err := router.Run(addr); err != nil {
			log.Fatalf("server exited with error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	housekeeping.Stop()

	sqlDB, err := db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}

	log.Println("server exited")
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := "host=" + cfg.Host +
		" port=" + cfg.Port +
		" user=" + cfg.User +
		" password=" + cfg.Password +
		" dbname=" + cfg.Name +
		" sslmode=" + cfg.SSLMode

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func newZapLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
