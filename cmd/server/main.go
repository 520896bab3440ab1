package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlosarraes/payroll/internal/adapters/payment/console"
	"github.com/carlosarraes/payroll/internal/adapters/payment/redisstream"
	"github.com/carlosarraes/payroll/internal/adapters/repository/postgres"
	"github.com/carlosarraes/payroll/internal/core/adjustment"
	"github.com/carlosarraes/payroll/internal/core/employee"
	"github.com/carlosarraes/payroll/internal/core/payment"
	"github.com/carlosarraes/payroll/internal/core/payroll"
	"github.com/carlosarraes/payroll/internal/platform/config"
	pg "github.com/carlosarraes/payroll/internal/platform/db/postgres"
	"github.com/carlosarraes/payroll/internal/platform/logger"
	"github.com/carlosarraes/payroll/internal/platform/server"
	"github.com/carlosarraes/payroll/internal/platform/tracing"
	"google.golang.org/grpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		exitf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		exitf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", "error", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}()

	catalog := adjustment.DefaultCatalog()
	if cfg.Payroll.ExemptContracted {
		catalog.Wrap(adjustment.ExemptContracted)
	}

	var policy adjustment.Strategy
	if cfg.Payroll.DefaultPolicy != "" {
		policy, err = catalog.Lookup(cfg.Payroll.DefaultPolicy)
		if err != nil {
			log.Fatal("invalid default policy", "policy", cfg.Payroll.DefaultPolicy, "available", catalog.Names(), "error", err)
		}
	}

	external, closePayment := newPaymentService(cfg.Payment, log)
	defer closePayment()

	deps := payroll.Deps{
		Registry: employee.Shared(),
		Factory:  employee.NewFactory(employee.WithNotifier(log.With("component", "employee"))),
		Catalog:  catalog,
		Policy:   policy,
		Payer:    payment.NewSalaryAdapter(external),
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	switch {
	case errors.Is(err, pg.ErrDisabled):
		log.Info("database disabled, running in memory only")
	case err != nil:
		log.Fatal("failed to initialize database pool", "error", err)
	default:
		defer dbPool.Close()
		deps.Repo = postgres.NewEmployeeRepository(dbPool)
		deps.Tx = pg.NewTransactionManager(dbPool,
			pg.WithIsolation(pg.IsolationLevel(cfg.Database.IsolationLevel)),
			pg.WithLogger(log.With("component", "postgres")),
		)
	}

	svc := payroll.NewService(deps)
	loaded, err := svc.Hydrate(ctx)
	if err != nil {
		log.Fatal("failed to load employees", "error", err)
	}

	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(server.LoggingInterceptor(log))}
	if cfg.Tracing.Enabled {
		serverOpts = append(serverOpts, tracing.ServerOption())
	}
	grpcServer := server.New(cfg.Server.ListenAddr, svc, serverOpts...)

	log.Info("gRPC server listening",
		"addr", cfg.Server.ListenAddr,
		"payment_driver", cfg.Payment.Driver,
		"default_policy", cfg.Payroll.DefaultPolicy,
		"employees_loaded", loaded,
	)

	if err := grpcServer.Run(ctx); err != nil {
		log.Fatal("server stopped with error", "error", err)
	}
}

func newPaymentService(cfg config.PaymentConfig, log *logger.Logger) (payment.ExternalService, func()) {
	switch cfg.Driver {
	case config.PaymentDriverRedis:
		client := redisstream.NewClient(cfg.Redis)
		svc := redisstream.New(client, cfg.Redis.Stream, cfg.Redis.Timeout, log.With("component", "payment"))
		return svc, func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", "error", err)
			}
		}
	default:
		return console.New(os.Stdout), func() {}
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
