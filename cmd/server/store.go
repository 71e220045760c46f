package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/database"
	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// storage is an opened repository plus what the server needs around it.
type storage struct {
	store  repository.Store
	checks map[string]handler.Check
	close  func() error
}

// openMySQL connects to the configured database and optionally applies
// pending migrations.
func openMySQL(ctx context.Context, cfg config.Config, migrate bool, log *zap.Logger) (*sqlx.DB, error) {
	db, err := database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		return nil, err
	}
	if migrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if len(applied) > 0 {
			log.Info("applied migrations", zap.Strings("versions", applied))
		}
	}
	return db, nil
}

// openStorage returns the MySQL store, or a seeded in-memory store for
// local development when memory is set.
func openStorage(ctx context.Context, cfg config.Config, memory, migrate bool, log *zap.Logger) (storage, error) {
	if memory {
		store := repository.NewMemoryStore()
		if err := seedDemo(ctx, store); err != nil {
			return storage{}, fmt.Errorf("seed demo data: %w", err)
		}
		log.Warn("using in-memory store; data is lost on exit")
		return storage{store: store, checks: map[string]handler.Check{}, close: func() error { return nil }}, nil
	}
	db, err := openMySQL(ctx, cfg, migrate, log)
	if err != nil {
		return storage{}, err
	}
	return storage{
		store:  repository.NewMySQLStore(db),
		checks: map[string]handler.Check{"mysql": db.PingContext},
		close:  db.Close,
	}, nil
}
