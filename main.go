package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/acadmx/tuition-service/internal/billing"
	"github.com/acadmx/tuition-service/internal/config"
	"github.com/acadmx/tuition-service/internal/db"
	"github.com/acadmx/tuition-service/internal/logger"
	"github.com/acadmx/tuition-service/internal/middleware"
	"github.com/acadmx/tuition-service/internal/migrate"
	"github.com/acadmx/tuition-service/internal/payment"
	"github.com/acadmx/tuition-service/internal/reconcile"
	"github.com/acadmx/tuition-service/internal/report"
	"github.com/acadmx/tuition-service/internal/schedule"
	"github.com/acadmx/tuition-service/internal/student"

	_ "github.com/acadmx/tuition-service/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Tuition Service
// @version 1.0
// @description REST API for the tutoring-business tuition ledger
// @host localhost:8080
func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.New(cfg.Log.Level, cfg.App.Env)

	ctx := context.Background()
	database, err := db.New(ctx, cfg.DB.DSN(), db.Options{})
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer database.Close()

	if err := migrate.Up(ctx, database); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logg))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	studentRepo := student.NewRepository(database)
	paymentRepo := payment.NewRepository(database)
	scheduleRepo := schedule.NewRepository(database)
	reportRepo := report.NewRepository(database, studentRepo)

	billingClient := billing.NewClient(cfg.Billing, logg)
	paymentSvc := payment.NewService(paymentRepo, studentRepo)
	reconciler := reconcile.New(paymentRepo, billingClient, logg)

	authed := router.Group("/")
	authed.Use(middleware.Auth([]byte(cfg.Auth.JWTSecret)))

	student.NewHandler(studentRepo, logg).RegisterRoutes(authed)
	payment.NewHandler(paymentSvc, logg).RegisterRoutes(authed)
	reconcile.NewHandler(reconciler, studentRepo, logg).RegisterRoutes(authed)
	billing.NewHandler(billingClient, studentRepo, logg).RegisterRoutes(authed)
	schedule.NewHandler(scheduleRepo, logg).RegisterRoutes(authed)
	report.NewHandler(reportRepo, logg).RegisterRoutes(authed)

	addr := fmt.Sprintf(":%s", cfg.App.Port)
	logg.Info("starting server", "addr", addr, "env", cfg.App.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
