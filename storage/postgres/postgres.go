package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridebook/config"
	"ridebook/pkg/logger"
	"ridebook/storage"
)

type Store struct {
	pool    *pgxpool.Pool
	migrate *migrate.Migrate
	log     logger.ILogger
}

func New(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	url := cfg.PostgresURL()

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Error("error while parsing Postgres config", logger.Error(err))
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("failed to connect Postgres", logger.Error(err))
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		log.Error("failed to ping Postgres", logger.Error(err))
		pool.Close()
		return nil, err
	}

	cwd, _ := os.Getwd()
	mPath := filepath.Join(cwd, "migrations")

	m, err := migrate.New("file://"+mPath, url)
	if err != nil {
		log.Error("migration init error", logger.Error(err))
		pool.Close()
		return nil, err
	}
	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
		} else {
			log.Error("migration up error", logger.Error(err))
			pool.Close()
			return nil, err
		}
	}

	log.Info("Postgres connected")

	return &Store{
		pool:    pool,
		migrate: m,
		log:     log,
	}, nil
}

// SchemaVersion reports the applied migration version, 0 when none ran.
func (s *Store) SchemaVersion(ctx context.Context) (uint, error) {
	version, dirty, err := s.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, err
	}
	if dirty {
		s.log.Warning("schema is dirty", logger.Uint("version", version))
	}
	return version, nil
}

func (s *Store) Close() {
	if s.migrate != nil {
		_, _ = s.migrate.Close()
	}
	s.pool.Close()
}

func (s *Store) GetPool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) ContactRequest() storage.IContactRequestStorage {
	return NewContactRequestRepo(s.pool, s.log)
}
func (s *Store) Identity() storage.IIdentityStorage         { return NewIdentityRepo(s.pool, s.log) }
func (s *Store) Role() storage.IRoleStorage                 { return NewRoleRepo(s.pool, s.log) }
func (s *Store) Driver() storage.IDriverStorage             { return NewDriverRepo(s.pool, s.log) }
func (s *Store) Customer() storage.ICustomerStorage         { return NewCustomerRepo(s.pool, s.log) }
func (s *Store) Ride() storage.IRideStorage                 { return NewRideRepo(s.pool, s.log) }
func (s *Store) Notification() storage.INotificationStorage { return NewNotificationRepo(s.pool, s.log) }
