package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/seckill/internal/core/domain"
)

// MySQLCatalog is the authoritative item store. The conditional decrement
// here is the synchronization point for all concurrent purchase attempts.
type MySQLCatalog struct {
	db *sql.DB
}

func NewMySQLCatalog(db *sql.DB) *MySQLCatalog {
	return &MySQLCatalog{db: db}
}

func (c *MySQLCatalog) QueryByID(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, stock, start_time, end_time, created_at
		FROM seckill_items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Stock, &item.StartTime, &item.EndTime, &item.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &item, nil
}

func (c *MySQLCatalog) QueryAll(ctx context.Context, offset, limit int) ([]domain.Item, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, stock, start_time, end_time, created_at
		FROM seckill_items ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Stock, &item.StartTime, &item.EndTime, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ConditionalDecrement is a single UPDATE, not a read-then-write: the
// stock and window checks ride in the WHERE clause so concurrent callers
// cannot oversell. Zero rows affected means sold out or outside the window.
func (c *MySQLCatalog) ConditionalDecrement(ctx context.Context, id int64, now time.Time) (int64, error) {
	result, err := c.db.ExecContext(ctx, `
		UPDATE seckill_items
		SET stock = stock - 1
		WHERE id = ? AND stock > 0 AND start_time < ? AND end_time > ?`,
		id, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return rows, nil
}
