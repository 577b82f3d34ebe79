package repository

import (
	"context"
	"fmt"

	"github.com/ocha-app/ocha/internal/config"
	"github.com/ocha-app/ocha/internal/domain"
	"github.com/ocha-app/ocha/internal/repository/mysql"
	"github.com/ocha-app/ocha/internal/repository/postgres"
	"github.com/ocha-app/ocha/internal/repository/sqlite"
)

// Store bundles the persistence repositories behind one handle so the
// application root can construct a backend once and inject it.
type Store struct {
	Threads  domain.ThreadRepository
	Messages domain.MessageRepository

	ping  func(ctx context.Context) error
	close func() error
}

// Ping verifies backend connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	if s.close != nil {
		return s.close()
	}
	return nil
}

// Open constructs the store backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Store{
			Threads:  postgres.NewThreadRepository(db.Pool),
			Messages: postgres.NewMessageRepository(db.Pool),
			ping:     db.Ping,
			close:    func() error { db.Close(); return nil },
		}, nil
	case "sqlite":
		db, err := sqlite.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Store{
			Threads:  sqlite.NewThreadRepository(db),
			Messages: sqlite.NewMessageRepository(db),
			ping:     db.Ping,
			close:    db.Close,
		}, nil
	case "mysql":
		db, err := mysql.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Store{
			Threads:  mysql.NewThreadRepository(db),
			Messages: mysql.NewMessageRepository(db),
			ping:     db.Ping,
			close:    db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
}
