package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/thesis-defense-api/api/swagger"
	"github.com/noah-isme/thesis-defense-api/internal/handler"
	"github.com/noah-isme/thesis-defense-api/internal/middleware"
	"github.com/noah-isme/thesis-defense-api/internal/repository"
	"github.com/noah-isme/thesis-defense-api/internal/service"
	"github.com/noah-isme/thesis-defense-api/pkg/cache"
	"github.com/noah-isme/thesis-defense-api/pkg/config"
	"github.com/noah-isme/thesis-defense-api/pkg/database"
	"github.com/noah-isme/thesis-defense-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/thesis-defense-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/thesis-defense-api/pkg/middleware/requestid"
)

// @title Thesis Defense API
// @version 1.0.0
// @description Scheduling and admission control for thesis-defense sessions
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, directory cache disabled", "error", err)
		redisClient = nil
	}

	sessionRepo := repository.NewSessionRepository(db)
	termRepo := repository.NewTermRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Directory.CacheTTL, logr, cfg.Directory.CacheEnabled)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	termSvc := service.NewTermService(termRepo, cfg.Terms.MinYear, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	directorySvc := service.NewDirectoryService(sessionRepo, teacherRepo, cacheSvc, cfg.Directory.CacheTTL, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, directorySvc, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, termRepo, studentRepo, teacherRepo, metricsSvc, validate, logr)

	termHandler := handler.NewTermHandler(termSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	directoryHandler := handler.NewDirectoryHandler(directorySvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Actor(tokenSvc))

	terms := api.Group("/terms")
	{
		terms.GET("", termHandler.List)
		terms.GET("/:id", termHandler.Get)
		terms.POST("", middleware.Audit(auditRepo, "create", "term"), termHandler.Create)
		terms.PUT("/:id", middleware.Audit(auditRepo, "update", "term"), termHandler.Update)
		terms.DELETE("/:id", middleware.Audit(auditRepo, "delete", "term"), termHandler.Delete)
	}

	teachers := api.Group("/teachers")
	{
		teachers.GET("", teacherHandler.List)
		teachers.GET("/:id", teacherHandler.Get)
		teachers.POST("", middleware.Audit(auditRepo, "create", "teacher"), teacherHandler.Create)
		teachers.PUT("/:id", middleware.Audit(auditRepo, "update", "teacher"), teacherHandler.Update)
		teachers.DELETE("/:id", middleware.Audit(auditRepo, "delete", "teacher"), teacherHandler.Delete)
	}

	students := api.Group("/students")
	{
		students.GET("", studentHandler.List)
		students.GET("/:id", studentHandler.Get)
		students.POST("", middleware.Audit(auditRepo, "create", "student"), studentHandler.Create)
		students.PATCH("/:id/status", middleware.Audit(auditRepo, "update", "student"), studentHandler.UpdateStatus)
	}

	sessions := api.Group("/sessions")
	{
		sessions.GET("", sessionHandler.List)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.POST("/check", sessionHandler.Check)
		sessions.POST("", middleware.Audit(auditRepo, "create", "session"), sessionHandler.Submit)
		sessions.PUT("/:id", middleware.Audit(auditRepo, "update", "session"), sessionHandler.Update)
		sessions.POST("/:id/conclude", middleware.Audit(auditRepo, "conclude", "session"), sessionHandler.Conclude)
		sessions.DELETE("/:id", middleware.Audit(auditRepo, "delete", "session"), sessionHandler.Delete)
	}

	api.GET("/directory/eligible-teachers", directoryHandler.EligibleTeachers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
