package app

import (
	"context"
	"fmt"

	"greenlaunch/pkg/storage"
	"greenlaunch/pkg/store"
)

// ReminderEnqueuer schedules session reminder dispatch. Enqueue failures are
// logged but never fail the calling operation.
type ReminderEnqueuer interface {
	Enqueue(ctx context.Context, sessionID, reminder string) error
}

// Config holds runtime dependencies for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Objects     storage.ObjectStore
	Reminders   ReminderEnqueuer
}

// App wires the persistence and storage layers to the platform's business
// rules. One instance per process, injected into the HTTP server.
type App struct {
	store     store.Store
	objects   storage.ObjectStore
	reminders ReminderEnqueuer
}

// New constructs the application. When cfg.Store is nil a Postgres store is
// opened from cfg.DatabaseURL.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	if cfg.Objects == nil {
		return nil, fmt.Errorf("object store required")
	}
	return &App{
		store:     dataStore,
		objects:   cfg.Objects,
		reminders: cfg.Reminders,
	}, nil
}

// Store exposes the underlying store to the reminder worker, which shares
// the App's persistence but runs its own consume loop.
func (a *App) Store() store.Store {
	return a.store
}
