package domain

import "time"

// PurchaseRecord is a winning purchase. The ledger enforces uniqueness on
// (ItemID, BuyerID); records are immutable once written.
type PurchaseRecord struct {
	ID        string
	ItemID    int64
	BuyerID   string
	CreatedAt time.Time
}
