package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ariefcatur/go-cafe-orders/internal/config"
	"github.com/ariefcatur/go-cafe-orders/internal/events"
	"github.com/ariefcatur/go-cafe-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-cafe-orders/internal/kafka"
	"github.com/ariefcatur/go-cafe-orders/internal/menus"
	"github.com/ariefcatur/go-cafe-orders/internal/orders"
	"github.com/ariefcatur/go-cafe-orders/internal/postgres"
	"github.com/ariefcatur/go-cafe-orders/internal/redisx"
	"github.com/ariefcatur/go-cafe-orders/internal/stockwatch"
	"github.com/ariefcatur/go-cafe-orders/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", cfg.ServiceName))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.TraceExporter)
	if err != nil {
		slog.Error("tracing setup", "err", err)
		os.Exit(1)
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			slog.Error("migrate", "err", err)
			os.Exit(1)
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	var publisher events.Publisher = events.Nop{}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		prod.Start(ctx)
		publisher = prod
	} else {
		slog.Warn("no kafka brokers configured, events are dropped")
	}

	// Services & handlers
	menuSvc := menus.NewService(&menus.Repo{DB: db}, menus.NewRedisCache(rdb, cfg.MenuCacheTTL), publisher, cfg.ServiceName)
	orderSvc := orders.NewService(&orders.Repo{DB: db}, rdb, menuSvc, publisher, orders.ServiceConfig{
		Producer:     cfg.ServiceName,
		VerifyTotals: cfg.VerifyOrderTotals,
	})

	router := httpx.NewRouter(cfg.RequestTimeout + 5*time.Second)
	(&httpx.MenusHandler{Service: menuSvc, Timeout: cfg.RequestTimeout}).Register(router)
	(&httpx.OrdersHandler{Service: orderSvc, Timeout: cfg.RequestTimeout}).Register(router)
	(&httpx.InventoryHandler{Alerts: stockwatch.NewAlertStore(rdb), Timeout: cfg.RequestTimeout}).Register(router)
	httpx.RegisterHealth(router, db)

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, "cafe-api"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// graceful shutdown
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()      // no more publishes; flush what is queued
		prod.WaitClosed() // writer closed
	}
	if err := shutdownTracing(ctx2); err != nil {
		slog.Error("tracing shutdown", "err", err)
	}
	cancel()
}
