package domain

import "time"

// Item is the sale item as the catalog stores it. Stock is owned by the
// catalog and only ever changes through its conditional decrement.
type Item struct {
	ID        int64
	Name      string
	Stock     int
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// Open reports whether the sale window is open at now.
// Both boundaries are strict: now == StartTime and now == EndTime are closed.
func (i Item) Open(now time.Time) bool {
	return now.After(i.StartTime) && now.Before(i.EndTime)
}
