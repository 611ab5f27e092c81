package storage

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLKV keeps each key as a row of kv_entries.
type MySQLKV struct {
	db *sql.DB
}

// OpenMySQLKV connects with dsn and creates the table if needed.
func OpenMySQLKV(ctx context.Context, dsn string) (*MySQLKV, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s, err := NewMySQLKV(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewMySQLKV(ctx context.Context, db *sql.DB) (*MySQLKV, error) {
	s := &MySQLKV{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MySQLKV) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv_entries (
    k VARCHAR(191) PRIMARY KEY,
    v LONGTEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`)
	return err
}

func (s *MySQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv_entries WHERE k=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(v), true, nil
}

func (s *MySQLKV) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv_entries (k, v) VALUES(?, ?)
    ON DUPLICATE KEY UPDATE v=VALUES(v)`, key, string(value))
	return err
}

func (s *MySQLKV) Close(ctx context.Context) error { return s.db.Close() }
