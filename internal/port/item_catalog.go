package port

import (
	"context"
	"time"

	"github.com/rl1809/seckill/internal/core/domain"
)

type ItemCatalog interface {
	// QueryByID returns the item, or nil when it does not exist.
	QueryByID(ctx context.Context, id int64) (*domain.Item, error)

	// QueryAll lists items for the surrounding read endpoints.
	QueryAll(ctx context.Context, offset, limit int) ([]domain.Item, error)

	// ConditionalDecrement decreases stock by one in a single atomic
	// statement, but only while stock > 0 and now is strictly inside the
	// sale window. Returns the number of rows affected (0 or 1).
	ConditionalDecrement(ctx context.Context, id int64, now time.Time) (int64, error)
}
