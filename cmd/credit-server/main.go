package main

import (
	"context"

	"credit-core/internal/bootstrap"
	"credit-core/internal/handler"
	"credit-core/internal/server"
	"credit-core/pkg/config"
	"credit-core/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 0. Config
	config.Init()

	// 1. Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. Stores and services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := bootstrap.Build(ctx, config.Global)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer deps.Close()

	// 3. Background workers: outbox relay and payout scheduler
	go deps.Relay.Start(ctx)
	if err := deps.Cron.Start(); err != nil {
		logger.Fatal("Failed to start payout scheduler", zap.Error(err))
	}

	// 4. HTTP + gRPC
	h := &handler.Handler{
		Wallets:  deps.Wallets,
		Ledger:   deps.Ledger,
		Packages: deps.Catalog,
		Unlocks:  deps.Unlocks,
		Rates:    deps.Rates,
		Payouts:  deps.Payouts,
		Passes:   deps.Cron,
	}
	r := server.NewHTTPRouter(h)
	grpcServer, grpcHealth := server.NewGRPCServer()

	app, err := server.New(server.Config{
		HttpPort: config.Global.App.HttpPort,
		GrpcPort: config.Global.App.GrpcPort,
	}, r, grpcServer, grpcHealth)
	if err != nil {
		logger.Fatal("Failed to create app", zap.Error(err))
	}
	app.OnShutdown(cancel)

	app.Run()
}
