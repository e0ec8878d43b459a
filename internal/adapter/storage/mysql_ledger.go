package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/seckill/internal/core/domain"
)

// MySQLLedger is the append-only purchase store. The unique key on
// (item_id, buyer_id) is what keeps a buyer from winning twice.
type MySQLLedger struct {
	db *sql.DB
}

func NewMySQLLedger(db *sql.DB) *MySQLLedger {
	return &MySQLLedger{db: db}
}

// InsertIfAbsent relies on INSERT IGNORE against the unique key: a
// duplicate reports zero rows affected instead of an error.
func (l *MySQLLedger) InsertIfAbsent(ctx context.Context, itemID int64, buyerID string, now time.Time) (int64, error) {
	result, err := l.db.ExecContext(ctx, `
		INSERT IGNORE INTO purchases (id, item_id, buyer_id, created_at)
		VALUES (?, ?, ?, ?)`,
		uuid.New().String(), itemID, buyerID, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert purchase: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return rows, nil
}

func (l *MySQLLedger) QueryByKey(ctx context.Context, itemID int64, buyerID string) (*domain.PurchaseRecord, error) {
	var record domain.PurchaseRecord
	err := l.db.QueryRowContext(ctx, `
		SELECT id, item_id, buyer_id, created_at
		FROM purchases WHERE item_id = ? AND buyer_id = ?`,
		itemID, buyerID,
	).Scan(&record.ID, &record.ItemID, &record.BuyerID, &record.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query purchase: %w", err)
	}
	return &record, nil
}
