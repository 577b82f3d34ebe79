package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ocha-app/ocha/internal/config"
)

// DB wraps a MySQL database handle.
type DB struct {
	conn *sql.DB
}

// NewDB opens a connection pool and bootstraps the schema.
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("mysql", cfg.MySQLDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql database: %w", err)
	}

	conn.SetMaxOpenConns(int(cfg.MaxConns))
	conn.SetMaxIdleConns(int(cfg.MinConns))

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping mysql database: %w", err)
	}

	if err := ensureSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Conn returns the underlying handle.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies database connectivity
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database handle.
func (db *DB) Close() error {
	return db.conn.Close()
}

func ensureSchema(ctx context.Context, conn *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS threads (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL DEFAULT '',
			title VARCHAR(255) NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_threads_user_id (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id VARCHAR(64) PRIMARY KEY,
			thread_id VARCHAR(64) NOT NULL,
			role ENUM('user','assistant','system') NOT NULL,
			parts JSON NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_messages_thread_created (thread_id, created_at),
			CONSTRAINT fk_messages_thread FOREIGN KEY (thread_id)
				REFERENCES threads(id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to bootstrap schema: %w", err)
		}
	}
	return nil
}
