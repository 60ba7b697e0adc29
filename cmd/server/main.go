package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homework-calendar/internal/config"
	apphttp "homework-calendar/internal/http"
	"homework-calendar/internal/repository/sqlite"
	"homework-calendar/internal/service"
	"homework-calendar/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	classRepo := sqlite.NewClassRepository(db)
	assignmentRepo := sqlite.NewAssignmentRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := classRepo.Init(ctx); err != nil {
		logger.Fatalf("init class repository: %v", err)
	}
	if err := assignmentRepo.Init(ctx); err != nil {
		logger.Fatalf("init assignment repository: %v", err)
	}

	userService := service.NewUserService(userRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, classRepo)
	classService := service.NewClassService(classRepo, assignmentRepo)

	// seed runs once before any request traffic
	if err := userService.EnsureDefaultUser(ctx); err != nil {
		logger.Fatalf("seed default user: %v", err)
	}

	storageSvc := buildStorage(ctx, cfg, logger)
	backupService := service.NewBackupService(db, storageSvc, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		assignmentService,
		classService,
		backupService,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildStorage returns nil when no bucket is configured; backups then report
// themselves unavailable instead of blocking startup.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) storage.Service {
	if cfg.Storage.Bucket == "" {
		logger.Info("no storage bucket configured, backups disabled")
		return nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		logger.Warnf("load aws config: %v, backups disabled", err)
		return nil
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client)
}
