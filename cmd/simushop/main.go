// Package main запускает HTTP-сервер симулятора SimuShop.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/simushop/internal/checkout"
	"github.com/mmeshcher/simushop/internal/config"
	"github.com/mmeshcher/simushop/internal/fulfillment"
	"github.com/mmeshcher/simushop/internal/handler"
	"github.com/mmeshcher/simushop/internal/middleware"
	"github.com/mmeshcher/simushop/internal/payment"
	"github.com/mmeshcher/simushop/internal/repository"
	"github.com/mmeshcher/simushop/internal/service"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}

	var authorizer payment.Authorizer = payment.Simulator{}
	if cfg.PaymentSystemAddress != "" {
		authorizer = payment.NewClient(cfg.PaymentSystemAddress)
		sugar.Infow("using remote payment gateway", "addr", cfg.PaymentSystemAddress)
	}

	svc := service.NewService(store, authorizer, logger, service.Settings{
		InitialBalance: cfg.InitialBalance,
		PrimeFee:       cfg.PrimeFee,
		Pricing: checkout.Pricing{
			SalesTaxRate: cfg.SalesTaxRate,
			ShippingFee:  cfg.ShippingFee,
		},
		Durations: fulfillment.Durations{
			Processing: config.Day(cfg.ProcessingDays),
			Normal:     config.Day(cfg.NormalShippingDays),
			Prime:      config.Day(cfg.PrimeShippingDays),
		},
		TickInterval: cfg.TickInterval,
		Wall:         func() time.Time { return time.Now().UTC() },
	})
	defer svc.Close()

	svc.Load(ctx)

	gate := middleware.NewSessionGate(cfg.CookieSecret, func() bool {
		_, signedUp := svc.Profile()
		return signedUp
	})
	h := handler.NewHandler(svc, logger, gate, middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	// Календарь симуляции: один тик равен одному дню.
	g.Go(func() error {
		sugar.Infow("starting simulation clock", "tick", cfg.TickInterval, "simDate", svc.Now())
		svc.StartClock(ctx)
		return nil
	})

	g.Go(func() error {
		sugar.Infow("starting simushop server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// openStore выбирает хранилище: PostgreSQL, затем Redis, иначе память процесса.
func openStore(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (repository.Store, error) {
	switch {
	case cfg.DatabaseURI != "":
		sugar.Infow("using postgres storage")
		return repository.NewPostgresRepository(cfg.DatabaseURI)
	case cfg.RedisAddress != "":
		sugar.Infow("using redis storage", "addr", cfg.RedisAddress, "db", cfg.RedisDB)
		return repository.NewRedisRepository(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
	default:
		sugar.Warnw("no storage configured, state is kept in memory and lost on restart")
		return repository.NewMemoryRepository(), nil
	}
}
