package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-order-inventory/internal/cachesync"
	"github.com/ariefcatur/go-order-inventory/internal/config"
	kafkax "github.com/ariefcatur/go-order-inventory/internal/kafka"
	"github.com/ariefcatur/go-order-inventory/internal/logging"
	"github.com/ariefcatur/go-order-inventory/internal/orders"
	"github.com/ariefcatur/go-order-inventory/internal/redisx"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.Init(cfg.ServiceName+"-cachesync", cfg.LogFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &cachesync.Service{
		Redis:       rdb,
		Log:         log,
		ServiceName: cfg.ServiceName + "-cachesync",
	}

	group := getenv("CACHESYNC_GROUP", "cachesync-svc")
	workers := mustAtoi(os.Getenv("CACHESYNC_WORKERS"), 4)
	topics := []string{
		orders.TopicOrderCreated,
		orders.TopicOrderCancelled,
		orders.TopicOrderStatusChanged,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topics, workers, log)

	go func() {
		log.Info("cachesync consumer started", "group", group, "topics", topics, "workers", workers)
		if err := cons.Start(ctx, svc.Handle); err != nil {
			log.Error("consumer exit", "error", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer...")
	cancel()
}
