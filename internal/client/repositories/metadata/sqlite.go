package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/venuebook/internal/dbx"
)

// SQLiteRepository keeps entries in the "metadata" table created by the
// embedded migrations.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ? AND value = ?`, key, expected)
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-delete metadata[%s]: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-delete metadata[%s]: %w", key, err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) SetIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error) {
	var stored []byte
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO NOTHING
		`, key, value); err != nil {
			return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
		}
		if err := tx.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&stored); err != nil {
			return fmt.Errorf("failed to get metadata[%s]: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}
