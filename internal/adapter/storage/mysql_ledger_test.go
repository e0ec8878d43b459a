package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestInsertIfAbsent_FirstWins(t *testing.T) {
	db := getMySQLDB(t)

	ledger := NewMySQLLedger(db)
	now := time.Now()
	itemID := insertTestItem(t, db, "ledger-test", 10, now.Add(-time.Hour), now.Add(time.Hour))

	inserted, err := ledger.InsertIfAbsent(context.Background(), itemID, "buyer-1", now)
	if err != nil {
		t.Fatalf("InsertIfAbsent failed: %v", err)
	}
	if inserted != 1 {
		t.Errorf("expected 1 row inserted, got %d", inserted)
	}

	// Duplicate key reports zero effect, not an error.
	inserted, err = ledger.InsertIfAbsent(context.Background(), itemID, "buyer-1", now)
	if err != nil {
		t.Fatalf("InsertIfAbsent failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("expected 0 rows for duplicate, got %d", inserted)
	}
}

func TestQueryByKey(t *testing.T) {
	db := getMySQLDB(t)

	ledger := NewMySQLLedger(db)
	now := time.Now()
	itemID := insertTestItem(t, db, "ledger-query-test", 10, now.Add(-time.Hour), now.Add(time.Hour))

	if _, err := ledger.InsertIfAbsent(context.Background(), itemID, "buyer-q", now); err != nil {
		t.Fatalf("setup insert failed: %v", err)
	}

	record, err := ledger.QueryByKey(context.Background(), itemID, "buyer-q")
	if err != nil {
		t.Fatalf("QueryByKey failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected record, got nil")
	}
	if record.ItemID != itemID || record.BuyerID != "buyer-q" {
		t.Errorf("unexpected record: %+v", record)
	}
	if record.ID == "" {
		t.Error("expected non-empty record id")
	}
}

func TestQueryByKey_NotFound(t *testing.T) {
	db := getMySQLDB(t)

	ledger := NewMySQLLedger(db)
	record, err := ledger.QueryByKey(context.Background(), -1, "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Error("expected nil for missing record")
	}
}

func TestInsertIfAbsent_Concurrent(t *testing.T) {
	db := getMySQLDB(t)

	ledger := NewMySQLLedger(db)
	now := time.Now()
	itemID := insertTestItem(t, db, "ledger-concurrent-test", 10, now.Add(-time.Hour), now.Add(time.Hour))

	var insertedCount atomic.Int32
	var wg sync.WaitGroup
	concurrency := 50

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := ledger.InsertIfAbsent(context.Background(), itemID, "same-buyer", time.Now())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if inserted == 1 {
				insertedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if insertedCount.Load() != 1 {
		t.Errorf("expected exactly 1 insert, got %d", insertedCount.Load())
	}
}
