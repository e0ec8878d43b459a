package service

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/port"
)

const defaultStorageTimeout = 5 * time.Second

// SeckillService coordinates the flash sale: it mints access tokens while
// the sale window is open and runs the purchase state machine. It holds no
// persistent state of its own; correctness under contention is delegated to
// the catalog's atomic decrement and the ledger's unique key.
type SeckillService struct {
	catalog port.ItemCatalog
	ledger  port.PurchaseLedger
	cache   port.ItemCache
	salt    string
	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

type Option func(*SeckillService)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SeckillService) { s.now = now }
}

// WithTimeout bounds every storage call made by the service.
func WithTimeout(d time.Duration) Option {
	return func(s *SeckillService) { s.timeout = d }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *SeckillService) { s.logger = logger }
}

// NewSeckillService builds the service. The salt is the process-wide token
// signing secret and is injected here rather than read from a global.
func NewSeckillService(catalog port.ItemCatalog, ledger port.PurchaseLedger, cache port.ItemCache, salt string, opts ...Option) *SeckillService {
	s := &SeckillService{
		catalog: catalog,
		ledger:  ledger,
		cache:   cache,
		salt:    salt,
		timeout: defaultStorageTimeout,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListItems is read plumbing for the listing endpoint.
func (s *SeckillService) ListItems(ctx context.Context, offset, limit int) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.catalog.QueryAll(ctx, offset, limit)
}

// GetItem resolves a single item through the metadata cache.
func (s *SeckillService) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.lookupItem(ctx, itemID)
}

// ExposeSeckill decides whether the sale for itemID is open right now and,
// if so, mints the item-bound access token. A non-nil error means the
// catalog itself could not be consulted.
func (s *SeckillService) ExposeSeckill(ctx context.Context, itemID int64) (domain.ExposureResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	item, err := s.lookupItem(ctx, itemID)
	if err != nil {
		return domain.ExposureResult{}, fmt.Errorf("resolve item %d: %w", itemID, err)
	}
	if item == nil {
		return domain.ExposureResult{NotFound: true}, nil
	}

	now := s.now()
	if item.Open(now) {
		return domain.ExposureResult{Open: true, Token: s.mintToken(itemID)}, nil
	}
	return domain.ExposureResult{Now: now, Start: item.StartTime, End: item.EndTime}, nil
}

// ExecutePurchase runs one purchase attempt to a single terminal result.
// Steps are hard gates: token check, atomic stock decrement, ledger insert.
// Storage faults are logged in full here and surfaced only as a generic
// internal-error result.
func (s *SeckillService) ExecutePurchase(ctx context.Context, itemID int64, buyerID, token string) domain.ExecutionResult {
	if buyerID == "" || !s.validToken(itemID, token) {
		return domain.ExecutionResult{Kind: domain.KindInvalidToken}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now()

	affected, err := s.catalog.ConditionalDecrement(ctx, itemID, now)
	if err != nil {
		return s.internalError(itemID, buyerID, "stock decrement failed", err)
	}
	if affected == 0 {
		// Sold out or window lapsed; the decrement cannot tell them apart.
		return domain.ExecutionResult{Kind: domain.KindClosed}
	}

	inserted, err := s.ledger.InsertIfAbsent(ctx, itemID, buyerID, now)
	if err != nil {
		return s.internalError(itemID, buyerID, "ledger insert failed", err)
	}
	if inserted == 0 {
		// The unit consumed by the decrement above is intentionally not
		// restored on a duplicate. See DESIGN.md.
		s.logger.Warn().Int64("item_id", itemID).Str("buyer_id", buyerID).Msg("repeated purchase attempt")
		return domain.ExecutionResult{Kind: domain.KindRepeated}
	}

	record, err := s.ledger.QueryByKey(ctx, itemID, buyerID)
	if err == nil && record == nil {
		err = errors.New("inserted record not found")
	}
	if err != nil {
		return s.internalError(itemID, buyerID, "record readback failed", err)
	}

	return domain.ExecutionResult{Kind: domain.KindSuccess, Record: record}
}

// lookupItem is the read-through path: cache first, catalog on a miss,
// best-effort populate afterwards. Cache trouble never fails the read.
func (s *SeckillService) lookupItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	item, err := s.cache.GetItem(ctx, itemID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("item_id", itemID).Msg("item cache read failed")
	} else if item != nil {
		return item, nil
	}

	item, err = s.catalog.QueryByID(ctx, itemID)
	if err != nil || item == nil {
		return nil, err
	}

	if err := s.cache.PutItem(ctx, *item); err != nil {
		s.logger.Warn().Err(err).Int64("item_id", itemID).Msg("item cache populate failed")
	}
	return item, nil
}

func (s *SeckillService) mintToken(itemID int64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d/%s", itemID, s.salt)))
	return hex.EncodeToString(sum[:])
}

func (s *SeckillService) validToken(itemID int64, token string) bool {
	minted := s.mintToken(itemID)
	return subtle.ConstantTimeCompare([]byte(minted), []byte(token)) == 1
}

func (s *SeckillService) internalError(itemID int64, buyerID, detail string, err error) domain.ExecutionResult {
	s.logger.Error().Err(err).Int64("item_id", itemID).Str("buyer_id", buyerID).Msg(detail)
	return domain.ExecutionResult{Kind: domain.KindInternalError, Detail: detail}
}
