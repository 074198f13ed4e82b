package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-order-inventory/internal/config"
	"github.com/ariefcatur/go-order-inventory/internal/httpx"
	kafkax "github.com/ariefcatur/go-order-inventory/internal/kafka"
	"github.com/ariefcatur/go-order-inventory/internal/logging"
	"github.com/ariefcatur/go-order-inventory/internal/orders"
	"github.com/ariefcatur/go-order-inventory/internal/postgres"
	"github.com/ariefcatur/go-order-inventory/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.Init(cfg.ServiceName, cfg.LogFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresConn)
	if err != nil {
		log.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	db := postgres.NewDB(pool)

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (satu per topic)
	pubCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
	pubCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024, log)
	pubStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, log)
	pubStock := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockAdjusted, 1024, log)
	pubs := []*kafkax.Producer{pubCreated, pubCancelled, pubStatus, pubStock}
	for _, p := range pubs {
		p.Start(ctx)
	}

	// Services & handlers
	svc := orders.NewService(postgres.NewUsers(db), postgres.NewProducts(db), postgres.NewOrders(db), db)
	products := orders.NewProducts(postgres.NewProducts(db))

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{
		Svc:          svc,
		Redis:        rdb,
		PubCreated:   pubCreated,
		PubCancelled: pubCancelled,
		PubStatus:    pubStatus,
		Service:      cfg.ServiceName,
	}).Register(router)
	(&httpx.ProductsHandler{
		Svc:      products,
		PubStock: pubStock,
		Service:  cfg.ServiceName,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
		case <-gctx.Done():
		}
		log.Info("shutting down...")

		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
	}

	for _, p := range pubs {
		p.Close() // tutup inbox -> flush & close writer
	}
	cancel()
	for _, p := range pubs {
		p.WaitClosed()
	}
}
