package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/seckill/internal/adapter/storage"
	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/core/service"
)

// Concurrent-buyer harness: seeds one item with a small stock, then fires
// many buyers at ExecutePurchase and checks that successes equal the stock.
func main() {
	mysqlDSN := flag.String("mysql", "root:root@tcp(localhost:3306)/seckill?parseTime=true", "MySQL DSN")
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	salt := flag.String("salt", "bench-salt", "token signing salt")
	stock := flag.Int("stock", 20, "initial stock")
	buyers := flag.Int("buyers", 50, "concurrent buyers")
	flag.Parse()

	ctx := context.Background()

	db, err := sql.Open("mysql", *mysqlDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: *redisAddr, PoolSize: 100})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Seed a fresh item with an open window.
	now := time.Now()
	result, err := db.ExecContext(ctx, `
		INSERT INTO seckill_items (name, stock, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		"bench-item-"+uuid.New().String(), *stock, now.Add(-time.Minute), now.Add(time.Hour), now,
	)
	if err != nil {
		log.Fatalf("failed to seed item: %v", err)
	}
	itemID, err := result.LastInsertId()
	if err != nil {
		log.Fatalf("failed to get item id: %v", err)
	}

	catalog := storage.NewMySQLCatalog(db)
	ledger := storage.NewMySQLLedger(db)
	cache := storage.NewRedisItemCache(rdb, time.Hour)
	seckill := service.NewSeckillService(catalog, ledger, cache, *salt)

	exposure, err := seckill.ExposeSeckill(ctx, itemID)
	if err != nil {
		log.Fatalf("exposure failed: %v", err)
	}
	if !exposure.Open {
		log.Fatalf("expected open sale, got %+v", exposure)
	}

	var successCount, closedCount, otherCount atomic.Int32
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < *buyers; i++ {
		buyerID := fmt.Sprintf("buyer-%d-%s", i, uuid.New().String())
		g.Go(func() error {
			res := seckill.ExecutePurchase(gctx, itemID, buyerID, exposure.Token)
			switch res.Kind {
			case domain.KindSuccess:
				successCount.Add(1)
			case domain.KindClosed:
				closedCount.Add(1)
			default:
				otherCount.Add(1)
			}
			return nil
		})
	}
	g.Wait()
	elapsed := time.Since(start)

	item, err := catalog.QueryByID(ctx, itemID)
	if err != nil {
		log.Fatalf("failed to read back item: %v", err)
	}

	expectSuccess := min(*stock, *buyers)
	fmt.Println("========== BENCH RESULTS ==========")
	fmt.Printf("Initial Stock:   %d\n", *stock)
	fmt.Printf("Buyers:          %d\n", *buyers)
	fmt.Printf("Successful:      %d\n", successCount.Load())
	fmt.Printf("Closed:          %d\n", closedCount.Load())
	fmt.Printf("Other:           %d\n", otherCount.Load())
	fmt.Printf("Final Stock:     %d\n", item.Stock)
	fmt.Printf("Duration:        %v\n", elapsed)
	fmt.Println("===================================")

	if int(successCount.Load()) == expectSuccess && item.Stock == max(0, *stock-*buyers) {
		fmt.Println("PASS: success count bounded by stock")
	} else {
		fmt.Printf("FAIL: expected %d successes and stock %d\n", expectSuccess, max(0, *stock-*buyers))
	}
}
