package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"sokoni-be/internal/cart"
	"sokoni-be/internal/checkout"
	"sokoni-be/internal/config"
	"sokoni-be/internal/db"
	"sokoni-be/internal/events"
	"sokoni-be/internal/graph"
	"sokoni-be/internal/logger"
	"sokoni-be/internal/metrics"
	"sokoni-be/internal/middleware"
	"sokoni-be/internal/order"
	"sokoni-be/internal/payment"
	"sokoni-be/internal/product"
	"sokoni-be/internal/transport"
	"sokoni-be/internal/utils"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(addr string, handler http.Handler) error {
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}
		return srv.ListenAndServe()
	}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	l := logger.L()

	var conn *sql.DB
	if cfg.StoreDriver == config.StoreDriverPostgres {
		conn = initDBFunc(cfg)
		defer conn.Close()
	}

	rdb := connectRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	var notifier events.Notifier = events.NoopNotifier{}
	if cfg.AMQPURL != "" {
		brokerConn, pub, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			l.Warn("broker unavailable, order events disabled", zap.Error(err))
		} else {
			defer brokerConn.Close()
			defer pub.Close()
			notifier = pub
		}
	}

	router := newServer(cfg, conn, rdb, notifier)

	addr := ":" + cfg.AppPort
	l.Info("server running",
		zap.String("addr", addr),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Bool("redis_cart", rdb != nil),
	)
	return startServerFunc(addr, router)
}

// connectRedis returns nil when no address is configured or the server does
// not answer, in which case carts live in process memory.
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.L().Warn("redis unavailable, using in-memory carts", zap.Error(err))
		rdb.Close()
		return nil
	}
	return rdb
}

func newServer(cfg *config.Config, conn *sql.DB, rdb *redis.Client, notifier events.Notifier) http.Handler {
	var (
		catalog product.Repository
		orders  order.Repository
	)
	reg := metrics.NewRegistry()
	if cfg.StoreDriver == config.StoreDriverMemory || conn == nil {
		mem := product.NewMemoryStore(product.DefaultCatalog())
		catalog = mem
		orders = order.NewMemoryRepository(mem)
	} else {
		pg := product.NewRepository(conn)
		catalog = pg
		orders = order.NewRepository(conn, pg)
		reg.MustRegister(collectors.NewDBStatsCollector(conn, cfg.DBName))
	}

	var store cart.Store = cart.NewMemoryStore()
	if rdb != nil {
		store = cart.NewRedisStore(rdb, cfg.CartTTL)
	}

	if notifier == nil {
		notifier = events.NoopNotifier{}
	}

	refs := utils.NewReferenceGenerator(time.Now)
	carts := cart.NewService(store, catalog)

	h := &transport.Handler{
		Products: product.NewService(catalog),
		Carts:    carts,
		Checkout: checkout.NewService(checkout.Dependencies{
			Carts:    carts,
			Catalog:  catalog,
			Orders:   orders,
			Payments: payment.NewStubGateway(refs),
			Refs:     refs,
			Notifier: notifier,
			Metrics:  reg,
		}),
		Orders:  order.NewService(orders),
		Metrics: reg,
	}
	h.Graph = graph.NewHandler(&graph.Resolver{
		Products: h.Products,
		Carts:    carts,
		Orders:   h.Orders,
	})

	return transport.NewRouter(h, transport.RouterConfig{
		SecretKey:     []byte(cfg.SecretKey),
		SecureCookies: cfg.AppEnv == "production",
		Limiter:       middleware.NewRateLimiter(cfg.InternalKey),
		Playground:    cfg.AppEnv != "production",
	})
}
