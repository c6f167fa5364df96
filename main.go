package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamedominate/auth"
	"gamedominate/config"
	"gamedominate/controllers"
	"gamedominate/database"
	grpcserver "gamedominate/grpc_server"
	"gamedominate/metrics"
	"gamedominate/registry"
	"gamedominate/repositories"
	"gamedominate/services"
	"gamedominate/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	switch cfg.LogLevel {
	case "debug":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() // Make sure the buffer is flushed before the program exits

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	hasher := auth.NewBcryptHasher()
	users := repositories.NewUserRepository(db)
	if err := database.SeedAdmin(ctx, users, hasher, cfg.Admin, logger); err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		return err
	}
	store, err := storage.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewDBStatsCollector(sqlDB, cfg.Database.Driver))
	httpMetrics := metrics.NewHTTPMetrics(reg)

	container := buildContainer(cfg, db, store, users, hasher, tokens, httpMetrics, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           container,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer := grpcserver.New(tokens, users, logger)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listening for gRPC: %w", err)
	}

	errs := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", grpcListener.Addr().String()))
		if err := grpcServer.Serve(grpcListener); err != nil {
			errs <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	deregister := registerWithConsul(cfg, logger)
	defer deregister()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errs:
		logger.Error("Server failed, shutting down", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	grpcServer.Shutdown()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("HTTP shutdown did not complete", zap.Error(serr))
	}
	return err
}

func buildContainer(
	cfg *config.Config,
	db *gorm.DB,
	store storage.FileStore,
	users repositories.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenService,
	httpMetrics *metrics.HTTPMetrics,
	logger *zap.Logger,
) http.Handler {
	uploads := services.Uploader{Store: store, MaxBytes: cfg.Upload.MaxBytes}
	deps := controllers.Deps{
		Tokens: tokens,
		Owners: repositories.NewOwnerRepository(db),
		Log:    logger,
	}

	opts := controllers.ContainerOptions{
		Log:     logger,
		Metrics: httpMetrics,
		Health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if local, ok := store.(*storage.LocalStore); ok {
		opts.ImagesDir = local.Dir()
		opts.ImagesPath = cfg.Upload.PublicPath
	}

	return controllers.NewContainer(opts,
		controllers.NewAuthController(services.NewAuthService(users, hasher, tokens, uploads, cfg.Admin.Email), deps),
		controllers.NewUserController(services.NewUserService(users, hasher, uploads), deps),
		controllers.NewGameController(services.NewGameService(repositories.NewGameRepository(db), repositories.NewReviewRepository(db), uploads), deps),
		controllers.NewNewsController(services.NewNewsService(repositories.NewNewsRepository(db), uploads), deps),
		controllers.NewCommunityController(services.NewCommunityService(repositories.NewCommunityRepository(db), uploads), deps),
	)
}

// registerWithConsul announces the HTTP and gRPC endpoints and returns the
// matching deregistration. A Consul failure is logged, not fatal.
func registerWithConsul(cfg *config.Config, logger *zap.Logger) func() {
	if cfg.Consul.Address == "" {
		return func() {}
	}
	sugar := logger.Sugar()
	reg, err := registry.NewConsulRegistry(cfg.Consul, sugar)
	if err != nil {
		sugar.Warnw("Consul registration skipped", "error", err)
		return func() {}
	}

	host := cfg.Consul.ServiceAddress
	if host == "" {
		if host, err = os.Hostname(); err != nil {
			sugar.Warnw("Consul registration skipped, no service address", "error", err)
			return func() {}
		}
	}
	interval := cfg.Consul.CheckInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	httpID := registry.InstanceID(cfg.ServiceName, host, cfg.HTTPPort)
	grpcID := registry.InstanceID(cfg.ServiceName+"-grpc", host, cfg.GRPCPort)
	instances := []registry.Registration{
		{
			ID: httpID, Name: cfg.ServiceName, Address: host, Port: cfg.HTTPPort, Tags: []string{"http"},
			Check: registry.HTTPCheck(httpID, host, cfg.HTTPPort, "/healthz", interval),
		},
		{
			ID: grpcID, Name: cfg.ServiceName + "-grpc", Address: host, Port: cfg.GRPCPort, Tags: []string{"grpc"},
			Check: registry.GRPCCheck(grpcID, host, cfg.GRPCPort, interval),
		},
	}

	var registered []string
	for _, inst := range instances {
		if err := reg.Register(inst); err == nil {
			registered = append(registered, inst.ID)
		}
	}
	return func() {
		for _, id := range registered {
			_ = reg.Deregister(id)
		}
	}
}
