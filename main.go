package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"paper-shelf/config"
	"paper-shelf/models"
	"paper-shelf/services"
	"paper-shelf/storage"
)

var (
	papersUploadedCounter  prometheus.Counter
	usersRegisteredCounter prometheus.Counter
	orphansSweptCounter    prometheus.Counter
)

func init() {
	papersUploadedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "papers_uploaded_total",
		Help: "Total number of papers uploaded.",
	})
	usersRegisteredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "users_registered_total",
		Help: "Total number of user accounts created.",
	})
	orphansSweptCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orphan_files_swept_total",
		Help: "Total number of orphaned upload files removed by the sweep job.",
	})
	prometheus.MustRegister(papersUploadedCounter, usersRegisteredCounter, orphansSweptCounter)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	err = db.AutoMigrate(
		&models.User{}, &models.Admin{}, &models.Researcher{},
		&models.Field{}, &models.Paper{}, &models.Author{}, &models.AuthorPaper{},
		&models.PaperKeyword{}, &models.Download{}, &models.Review{}, &models.Search{},
		&models.ChatSession{}, &models.ChatMessage{},
	)
	if err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Seeding
	seedDefaultFields(db, logging)

	// Setup File Store
	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logging.Fatal("File store creation failed", zap.Error(err))
	}
	logging.Info("File store ready", zap.String("dir", files.Dir()))

	// Setup Services
	identity := services.NewIdentityService(cfg, db, files, logging)
	papers := services.NewPaperService(cfg, db, files, logging)
	chat := services.NewChatService(db, logging)
	interactions := services.NewInteractionService(db, logging)
	stats := services.NewStatsService(db, logging)
	recommend := services.NewRecommendService(db, papers, logging)
	maintenance := services.NewMaintenanceService(db, files, logging)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", cfg.UploadDir)
	router.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, "Server is running", nil)
	})

	// Setup Routes
	setupAuthRoutes(router, identity, logging)
	setupPaperRoutes(router, papers, interactions, identity, logging)
	setupAuthorRoutes(router, db, logging)
	setupFieldRoutes(router, db, identity, logging)
	setupInteractionRoutes(router, interactions, identity, logging)
	setupStatisticsRoutes(router, stats, identity, logging)
	setupAIRoutes(router, recommend, identity, logging)
	setupUserRoutes(router, identity, logging)
	setupAdminRoutes(router, cfg, papers, identity, stats, files, logging)
	setupChatRoutes(router, chat, identity, logging)

	router.NoRoute(func(c *gin.Context) {
		respond(c, http.StatusNotFound, "Endpoint not found", nil)
	})

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.SweepSchedule, func() {
		logging.Info("Running scheduled upload sweep...")
		count, err := maintenance.SweepOrphans()
		if err != nil {
			logging.Error("Sweep job failed", zap.Error(err))
		} else {
			orphansSweptCounter.Add(float64(count))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down gracefully...")
	cronScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logging.Info("Server closed")
}

// seedDefaultFields legt einige Standard-Forschungsfelder an, falls sie fehlen.
func seedDefaultFields(db *gorm.DB, log *zap.Logger) {
	defaults := []models.Field{
		{FieldName: "Computer Science", Description: "Computing, algorithms, and information systems"},
		{FieldName: "Medicine", Description: "Clinical and biomedical research"},
		{FieldName: "Physics", Description: "Physical sciences"},
		{FieldName: "Biology", Description: "Life sciences"},
	}
	for _, f := range defaults {
		if err := db.Where("field_name = ?", f.FieldName).FirstOrCreate(&f).Error; err != nil {
			log.Warn("Konnte Standard-Feld nicht anlegen", zap.String("field", f.FieldName), zap.Error(err))
		}
	}
}
