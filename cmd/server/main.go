package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	redisCache "github.com/egannguyen/go-kafka-ecommerce/storefront/internal/cache/redis"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/config"
	httpDelivery "github.com/egannguyen/go-kafka-ecommerce/storefront/internal/delivery/http"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/logging"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/messaging"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/messaging/kafka"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/messaging/watermill"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository/memory"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository/postgres"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/service"
)

const (
	shutdownTimeout   = 10 * time.Second
	stockWatcherGroup = "storefront-stock-watcher"
)

type repositories struct {
	products  repository.ProductRepository
	carts     repository.CartRepository
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	payments  repository.PaymentMethodRepository
	outbox    repository.Outbox
	tx        repository.TxManager
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("storefront stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Storage ---
	repos, closeDB, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	// --- Product display cache ---
	var cache repository.ProductDisplayCache = memory.NewDisplayCache()
	if cfg.RedisAddr != "" {
		client, err := redisCache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		cache = redisCache.NewDisplayCache(client, cfg.ProductCacheTTL)
		logger.Info("product display cache on redis", zap.String("addr", cfg.RedisAddr))
	}

	// --- Messaging ---
	publisher, subscriber, err := openMessaging(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close messaging", zap.Error(err))
		}
	}()

	// --- Services ---
	catalog := service.NewCatalogService(repos.products, cache, logger)
	svc := httpDelivery.Services{
		Catalog:  catalog,
		Cart:     service.NewCartService(repos.carts, repos.products, cache, repos.tx, logger),
		Checkout: service.NewCheckoutService(repos.carts, repos.orders, repos.addresses, repos.payments, repos.outbox, repos.tx, service.OrderPolicy(cfg.OrderPolicy), logger),
		Orders:   service.NewOrderService(repos.orders, repos.products, repos.carts, repos.outbox, repos.tx, logger),
		Accounts: service.NewAccountService(repos.addresses, repos.payments, repos.orders, repos.tx, logger),
	}

	if cfg.SeedProducts {
		if err := catalog.SeedDefaults(ctx); err != nil {
			return err
		}
	}

	// --- Background workers ---
	relay := service.NewOutboxRelay(repos.outbox, publisher, cfg.KafkaTopicPrefix, cfg.OutboxPollInterval, logger)
	go relay.Run(ctx)

	if subscriber != nil {
		watcher := service.NewStockWatcher(cache, logger)
		topic := service.Topic(cfg.KafkaTopicPrefix, "ProductStockUpdated")
		go subscriber.Consume(ctx, topic, stockWatcherGroup, watcher.HandleProductStockUpdated)
		logger.Info("stock watcher started", zap.String("topic", topic))
	}

	// --- HTTP API ---
	gin.SetMode(gin.ReleaseMode)
	server := httpDelivery.NewServer(svc, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Engine(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", cfg.StorageDriver),
			zap.String("messaging", cfg.MessagingDriver),
			zap.String("order_policy", cfg.OrderPolicy))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repositories, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		logger.Info("using in-memory storage")
		return &repositories{
			products:  memory.NewProductRepository(store),
			carts:     memory.NewCartRepository(store),
			orders:    memory.NewOrderRepository(store),
			addresses: memory.NewAddressRepository(store),
			payments:  memory.NewPaymentMethodRepository(store),
			outbox:    memory.NewOutbox(store),
			tx:        memory.NewTxManager(store),
		}, func() {}, nil
	}

	db, err := postgres.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}
	logger.Info("connected to postgres")
	return newPostgresRepositories(db), func() { _ = db.Close() }, nil
}

func newPostgresRepositories(db *sql.DB) *repositories {
	return &repositories{
		products:  postgres.NewProductRepository(db),
		carts:     postgres.NewCartRepository(db),
		orders:    postgres.NewOrderRepository(db),
		addresses: postgres.NewAddressRepository(db),
		payments:  postgres.NewPaymentMethodRepository(db),
		outbox:    postgres.NewOutbox(db),
		tx:        postgres.NewTxManager(db),
	}
}

// openMessaging returns the outbox publisher and, when the driver can
// deliver events back to this process, a subscriber.
func openMessaging(cfg *config.Config, logger *zap.Logger) (messaging.Publisher, messaging.Subscriber, error) {
	switch cfg.MessagingDriver {
	case config.MessagingGoChannel:
		bus := watermill.NewGoChannelBus(logger)
		return bus, bus, nil
	case config.MessagingKafka:
		b := kafka.NewBroker(cfg.KafkaBrokers, logger)
		return b, b, nil
	case config.MessagingWatermillKafka:
		bus, err := watermill.NewKafkaBus(cfg.KafkaBrokers, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init watermill kafka bus: %w", err)
		}
		return bus, bus, nil
	default:
		return messaging.NopPublisher{}, nil, nil
	}
}
