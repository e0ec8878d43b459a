package port

import (
	"context"
	"time"

	"github.com/rl1809/seckill/internal/core/domain"
)

type PurchaseLedger interface {
	// InsertIfAbsent records a win for (itemID, buyerID) unless one already
	// exists. Returns the number of rows inserted: 0 means duplicate.
	InsertIfAbsent(ctx context.Context, itemID int64, buyerID string, now time.Time) (int64, error)

	// QueryByKey returns the record for (itemID, buyerID), or nil.
	QueryByKey(ctx context.Context, itemID int64, buyerID string) (*domain.PurchaseRecord, error)
}
