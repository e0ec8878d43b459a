package port

import (
	"context"

	"github.com/rl1809/seckill/internal/core/domain"
)

type ItemCache interface {
	// GetItem returns the cached item, or nil on a miss.
	GetItem(ctx context.Context, id int64) (*domain.Item, error)

	// PutItem stores item metadata. Population is idempotent; last write wins.
	PutItem(ctx context.Context, item domain.Item) error
}
