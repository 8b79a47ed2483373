package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/medvisionlab/chestray/internal/application"
	appimages "github.com/medvisionlab/chestray/internal/application/images"
	appreport "github.com/medvisionlab/chestray/internal/application/report"
	"github.com/medvisionlab/chestray/internal/config"
	domimages "github.com/medvisionlab/chestray/internal/domain/images"
	domuploaderrors "github.com/medvisionlab/chestray/internal/domain/uploaderrors"
	domusers "github.com/medvisionlab/chestray/internal/domain/users"
	aiclient "github.com/medvisionlab/chestray/internal/infra/ai/openai"
	mysqlp "github.com/medvisionlab/chestray/internal/infra/db/mysql"
	postgresp "github.com/medvisionlab/chestray/internal/infra/db/postgres"
	"github.com/medvisionlab/chestray/internal/infra/httpserver"
	scoringclient "github.com/medvisionlab/chestray/internal/infra/scoring"
	minioStore "github.com/medvisionlab/chestray/internal/infra/storage"
	"github.com/medvisionlab/chestray/internal/middleware"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database, pick the repo set for the configured driver
	var (
		db        *sql.DB
		imageRepo domimages.Repository
		userRepo  domusers.Repository
		errorRepo domuploaderrors.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.DSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		imageRepo = postgresp.NewImageRepository(db)
		userRepo = postgresp.NewUserRepository(db)
		errorRepo = postgresp.NewUploadErrorRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.DSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		imageRepo = mysqlp.NewImageRepository(db)
		userRepo = mysqlp.NewUserRepository(db)
		errorRepo = mysqlp.NewUploadErrorRepository(db)
	}
	defer db.Close()

	// init minio (optional)
	var archive domimages.ArchiveStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archive = store
	}

	// init scorer
	scorer := scoringclient.NewClient(cfg.Inference.Endpoint, time.Duration(cfg.Inference.TimeoutSeconds)*time.Second)

	// init report generator
	generator := aiclient.NewClient(cfg.Generation.APIKey, cfg.Generation.Model, cfg.Generation.Language)
	reports := appreport.NewService(generator, time.Duration(cfg.Generation.TimeoutSeconds)*time.Second)
	reports.OnFallback = middleware.IncrementReportsFallback

	// init service
	svc := &appimages.Service{
		Repo:    imageRepo,
		Scorer:  scorer,
		Reports: reports,
		Archive: archive,
		Errors:  errorRepo,
		Clock:   application.SystemClock{},
	}

	secret := []byte(cfg.SecretKey)
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.SessionAuth(secret))
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RetryDelaySeconds))

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(svc, userRepo, secret, cfg.Upload.MaxSizeBytes, sessionTTL))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
