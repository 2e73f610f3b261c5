package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"portal/internal/config"
	"portal/internal/database"
	"portal/internal/database/migration"
	"portal/internal/logging"
	"portal/internal/repository"
	repomongo "portal/internal/repository/mongo"
	"portal/internal/repository/postgres"
)

// backend is the connected database plus the repositories built on it.
type backend struct {
	manager   *database.Manager
	companies repository.CompanyRepository
	projects  repository.ProjectRepository
	documents repository.DocumentRepository

	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

func loadConfig() (*config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	log := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		Location:    cfg.Location(),
	})
	return cfg, log, nil
}

// openBackend opens the configured database driver without waiting for it.
func openBackend(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*backend, error) {
	opts := []database.ManagerOption{database.WithMaxRetries(cfg.Database.ConnectMaxRetries)}

	switch cfg.Database.Driver {
	case config.DatabaseMongo:
		client, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		return &backend{
			manager:   database.NewManager(config.DatabaseMongo, database.MongoPinger(client), log, opts...),
			companies: repomongo.NewCompanyMongo(db),
			projects:  repomongo.NewProjectMongo(db),
			documents: repomongo.NewDocumentMongo(db),
			migrate: func(ctx context.Context) error {
				return migration.EnsureIndexes(ctx, db, log)
			},
			close: client.Disconnect,
		}, nil
	default:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		return &backend{
			manager:   database.NewManager(config.DatabasePostgres, database.SQLPinger(db), log, opts...),
			companies: postgres.NewCompanyPostgres(db),
			projects:  postgres.NewProjectPostgres(db),
			documents: postgres.NewDocumentPostgres(db),
			migrate: func(ctx context.Context) error {
				return migration.EnsureMigrated(ctx, db, log)
			},
			close: closeSQL(db),
		}, nil
	}
}

func closeSQL(db *sql.DB) func(context.Context) error {
	return func(context.Context) error { return db.Close() }
}

// connect blocks until the database answers and its schema is in place.
func (b *backend) connect(ctx context.Context) error {
	if err := b.manager.Start(ctx); err != nil {
		return errors.Wrapf(err, "connect %s", b.manager.Name())
	}
	mctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := b.migrate(mctx); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

func runMigrate(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("db_open_failed", zap.Error(err))
		return err
	}
	defer func() { _ = b.close(context.Background()) }()

	if err := b.connect(ctx); err != nil {
		log.Error("migrate_failed", zap.Error(err))
		return err
	}
	log.Info("migrate_done", zap.String("db", b.manager.Name()))
	return nil
}
