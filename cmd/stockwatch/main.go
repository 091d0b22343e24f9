package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-cafe-orders/internal/config"
	kafkax "github.com/ariefcatur/go-cafe-orders/internal/kafka"
	"github.com/ariefcatur/go-cafe-orders/internal/redisx"
	"github.com/ariefcatur/go-cafe-orders/internal/stockwatch"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	name := cfg.ServiceName + "-stockwatch"
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", name))

	if len(cfg.KafkaBrokers) == 0 {
		slog.Error("KAFKA_BROKERS is empty")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis ping", "err", err)
		os.Exit(1)
	}

	svc := &stockwatch.Service{
		Store:       stockwatch.NewAlertStore(rdb),
		Redis:       rdb,
		ServiceName: name,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.StockwatchGroup, stockwatch.Topics, cfg.StockwatchWorkers)
	slog.Info("stockwatch consumer started",
		"group", cfg.StockwatchGroup, "topics", stockwatch.Topics, "workers", cfg.StockwatchWorkers)

	// Start returns once ctx is cancelled and in-flight messages are done.
	if err := cons.Start(ctx, svc.Handle); err != nil {
		slog.Error("consumer exit", "err", err)
		os.Exit(1)
	}
	slog.Info("stockwatch stopped")
}
