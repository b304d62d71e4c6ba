package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"greenlaunch/internal/app"
	"greenlaunch/internal/config"
	"greenlaunch/internal/util"
	"greenlaunch/pkg/queue"
	"greenlaunch/pkg/store"
)

// The reminder worker consumes the session reminder stream and marks each
// reminder dispatched on its session row. Delivery itself (mail, push) is
// left to downstream notification infrastructure reading the audit trail.
func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init postgres store: %v", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reminderQueue.Start(ctx, 2, func(ctx context.Context, job queue.JobStatus) error {
		session, ok, err := dataStore.GetSession(job.SessionID)
		if err != nil {
			return err
		}
		if !ok {
			slog.Warn("reminder for missing session", "session_id", job.SessionID, "reminder", job.Reminder)
			return nil
		}
		if err := app.MarkReminderScheduled(dataStore, job.SessionID, job.Reminder); err != nil {
			return err
		}
		slog.Info("reminder scheduled",
			"session_id", session.ID,
			"reminder", job.Reminder,
			"start_at", session.StartAt,
			"entrepreneur_id", session.EntrepreneurID,
			"mentor_id", session.MentorID)
		return nil
	})

	slog.Info("reminder worker running", "stream", cfg.ReminderStream)
	<-ctx.Done()
	slog.Info("reminder worker stopping")
}
