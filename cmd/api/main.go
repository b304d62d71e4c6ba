package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"greenlaunch/internal/app"
	"greenlaunch/internal/config"
	"greenlaunch/internal/server"
	"greenlaunch/internal/tools"
	"greenlaunch/internal/usertoken"
	"greenlaunch/internal/util"
	"greenlaunch/pkg/queue"
	"greenlaunch/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	leeway, err := config.ParseJWTLeeway(cfg.JWTLeeway)
	if err != nil {
		log.Fatalf("failed to parse JWT leeway: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	verifier, err := usertoken.NewVerifier(usertoken.Config{
		JWKSURL:  cfg.IdentityJWKSURL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   leeway,
	})
	if err != nil {
		log.Fatalf("failed to init token verifier: %v", err)
	}

	objects, err := newObjectStore(cfg)
	if err != nil {
		log.Fatalf("failed to init object storage: %v", err)
	}

	reminderQueue, err := queue.NewRedisJobQueue(queue.RedisQueueConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		Stream:   cfg.ReminderStream,
		Group:    cfg.ReminderGroup,
	})
	if err != nil {
		log.Fatalf("failed to init reminder queue: %v", err)
	}

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Objects:     objects,
		Reminders:   reminderEnqueuer{q: reminderQueue},
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	answerDir := cfg.LocalAnswerDir
	if answerDir == "" {
		answerDir = "data/answers"
	}
	localAnswers, err := tools.NewLocalStore(answerDir)
	if err != nil {
		log.Fatalf("failed to init local answer store: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                      appCore,
		Resolver:                 tools.NewResolver(appCore, localAnswers),
		TokenVerifier:            verifier,
		RedisAddr:                cfg.RedisAddr,
		RedisPassword:            cfg.RedisPassword,
		SubmitRateLimitPerMinute: cfg.SubmitRateLimitPerMinute,
		UploadRateLimitPerMinute: cfg.UploadRateLimitPerMinute,
		MaxUploadBytes:           cfg.MaxUploadBytes,
		AllowedExtensions:        cfg.AllowedExtensions,
		TrustedProxyCIDRs:        cfg.TrustedProxyCIDRs,
		AllowedOrigins:           cfg.AllowedOrigins,
		UploadDir:                diskUploadDir(cfg),
	})
	if err != nil {
		log.Fatalf("failed to init http server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      util.WithRequestID(util.WithRequestLog("api", httpServer.Router())),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("api listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func newObjectStore(cfg config.FileConfig) (storage.ObjectStore, error) {
	if strings.TrimSpace(cfg.StorageBackend) == "minio" {
		return storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	}
	return storage.NewDiskStore(cfg.UploadDir, "/uploads")
}

func diskUploadDir(cfg config.FileConfig) string {
	if strings.TrimSpace(cfg.StorageBackend) == "minio" {
		return ""
	}
	return cfg.UploadDir
}

// reminderEnqueuer adapts the job queue to the app's enqueue interface,
// dropping the returned job status.
type reminderEnqueuer struct {
	q *queue.RedisJobQueue
}

func (e reminderEnqueuer) Enqueue(ctx context.Context, sessionID, reminder string) error {
	_, err := e.q.Enqueue(ctx, sessionID, reminder)
	return err
}
