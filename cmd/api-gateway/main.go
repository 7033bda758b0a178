package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-teachers-api/api/swagger"
	"github.com/noah-isme/school-teachers-api/internal/handler"
	"github.com/noah-isme/school-teachers-api/internal/middleware"
	"github.com/noah-isme/school-teachers-api/internal/models"
	"github.com/noah-isme/school-teachers-api/internal/repository"
	"github.com/noah-isme/school-teachers-api/internal/service"
	"github.com/noah-isme/school-teachers-api/pkg/cache"
	"github.com/noah-isme/school-teachers-api/pkg/config"
	"github.com/noah-isme/school-teachers-api/pkg/database"
	"github.com/noah-isme/school-teachers-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-teachers-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-teachers-api/pkg/middleware/requestid"
	"github.com/noah-isme/school-teachers-api/pkg/storage"
)

// @title School Teachers API
// @version 1.0.0
// @description Teacher registration, authentication and queries
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.LoginProtection.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	r := newRouter(cfg, logr, db, redisClient)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *gin.Engine {
	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	teacherRepo := repository.NewTeacherRepository(db, userRepo)
	files := storage.NewLocalStorage(cfg.Uploads.Dir)
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	mapper := service.NewTeacherMapper(service.NewBcryptHasher(cfg.Security.BcryptCost))

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	teacherSvc := service.NewTeacherService(teacherRepo, files, signer, userRepo, metricsSvc, mapper, validate, logr, service.TeacherServiceConfig{
		APIPrefix:       cfg.APIPrefix,
		DefaultPageSize: cfg.Pagination.DefaultSize,
	})
	exportSvc := service.NewExportService(teacherSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, exportSvc, handler.TeacherHandlerConfig{
		MaxFileSize:     cfg.Uploads.MaxFileSizeBytes,
		DefaultPageSize: cfg.Pagination.DefaultSize,
	})
	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc.Handler(), checks)

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

	auth := api.Group("/auth")
	if cfg.LoginProtection.Enabled {
		attempts := repository.NewLoginAttemptRepository(redisClient, cfg.LoginProtection.Limit, cfg.LoginProtection.Window, cfg.LoginProtection.Block)
		auth.Use(middleware.LoginProtection(attempts, metricsSvc, logr))
	}
	auth.POST("/authenticate", authHandler.Authenticate)

	teachers := api.Group("/teachers")
	teachers.POST("/save", teacherHandler.Save)
	teachers.GET("/:uuid/amka-file", teacherHandler.DownloadAttachment)

	secured := teachers.Group("")
	secured.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher, models.RoleSuperAdmin))
	secured.GET("/paginated", teacherHandler.Paginated)
	secured.GET("/paginated/sorted", teacherHandler.PaginatedSorted)
	secured.POST("/filtered", teacherHandler.Filtered)
	secured.POST("/filtered/paginated", teacherHandler.FilteredPaginated)
	secured.POST("/filtered/export", middleware.Audit(userRepo, logr, models.AuditActionTeacherExport, "teacher"), teacherHandler.Export)
	secured.GET("/:uuid/amka-file/link", middleware.Audit(userRepo, logr, models.AuditActionAttachmentLink, "teacher"), teacherHandler.AttachmentLink)

	return r
}
