package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/ecofinds/marketplace/internal/adapter/handler"
	"github.com/ecofinds/marketplace/internal/adapter/messaging"
	"github.com/ecofinds/marketplace/internal/adapter/storage"
	"github.com/ecofinds/marketplace/internal/config"
	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/core/service"
	"github.com/ecofinds/marketplace/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	var (
		snapshots   port.SnapshotRepository
		idempotency port.IdempotencyStore
		closers     []func() error
	)

	memory := storage.NewMemoryAdapter()
	snapshots, idempotency = memory, memory

	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		log.Println("connected to redis")

		redisAdapter := storage.NewRedisAdapter(rdb, cfg.ServiceName)
		snapshots, idempotency = redisAdapter, redisAdapter
		closers = append(closers, rdb.Close)

	case config.BackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("failed to ping mysql: %v", err)
		}
		log.Println("connected to mysql")

		mysqlAdapter := storage.NewMySQLAdapter(db, cfg.ServiceName)
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate mysql: %v", err)
		}
		snapshots = mysqlAdapter
		closers = append(closers, db.Close)
	}
	log.Printf("using %s store", cfg.StoreBackend)

	// Initialize service
	market := service.NewMarketplace()
	if err := bootstrap(ctx, market, snapshots, cfg.SeedDemo); err != nil {
		log.Fatalf("failed to load state: %v", err)
	}

	checkout := service.NewCheckoutService(market, idempotency, cfg.QueueSize)

	// Initialize publisher
	var publisher port.OrderPublisher = messaging.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderTopic, cfg.ServiceName)
		log.Printf("publishing orders to kafka topic %s", cfg.OrderTopic)
	}

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, checkout.GetOrderQueue(), publisher)
		}(i)
	}
	log.Printf("started %d workers", cfg.WorkerCount)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterMarketplaceServer(grpcServer, handler.NewGRPCHandler(market, checkout, snapshots))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewHTTPHandler(market, checkout, snapshots).Routes(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	// in-flight requests may run for the full request timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), handler.RequestTimeout+5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	// Close order queue and wait for workers
	checkout.Close()
	wg.Wait()
	log.Println("workers stopped")

	if err := snapshots.Save(shutdownCtx, market.Snapshot()); err != nil {
		log.Printf("failed to save final snapshot: %v", err)
	}

	if err := publisher.Close(); err != nil {
		log.Printf("failed to close publisher: %v", err)
	}
	for _, closeFn := range closers {
		closeFn()
	}
	log.Println("connections closed")
}

// bootstrap restores the stored snapshot, or seeds demo data into an empty store.
func bootstrap(ctx context.Context, market *service.Marketplace, snapshots port.SnapshotRepository, seed bool) error {
	snap, err := snapshots.Load(ctx)
	if err != nil {
		return err
	}
	if snap != nil {
		if err := market.Restore(*snap); err != nil {
			return err
		}
		log.Printf("restored snapshot version %d: %d users, %d products, %d orders",
			snap.Version, len(snap.Users), len(snap.Products), len(snap.Orders))
		return nil
	}

	if !seed {
		return nil
	}
	if err := market.SeedDemo(); err != nil {
		return err
	}
	log.Printf("seeded demo data, log in with password %q", service.DemoPassword)
	return snapshots.Save(ctx, market.Snapshot())
}

func workerLoop(id int, queue <-chan domain.Order, publisher port.OrderPublisher) {
	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := publisher.PublishOrder(ctx, order); err != nil {
			log.Printf("worker %d: failed to publish order %s: %v", id, order.ID, err)
		} else {
			log.Printf("worker %d: published order %s", id, order.ID)
		}

		cancel()
	}
}
