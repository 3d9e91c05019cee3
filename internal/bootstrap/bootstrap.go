// Package bootstrap connects the stores and assembles the ledger services
// shared by credit-server and credit-cli.
package bootstrap

import (
	"context"
	"fmt"

	"credit-core/internal/gateway"
	"credit-core/internal/model"
	"credit-core/internal/service"
	"credit-core/internal/service/catalog"
	"credit-core/internal/service/mq"
	"credit-core/internal/service/notify"
	"credit-core/internal/service/payout"
	"credit-core/internal/service/purchase"
	"credit-core/internal/service/unlock"
	"credit-core/internal/service/wallet"
	"credit-core/pkg/cache"
	"credit-core/pkg/config"
	"credit-core/pkg/database"
	"credit-core/pkg/logger"
	"credit-core/pkg/utils/lock"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	GatewayLive = "live"
	GatewayStub = "stub"

	rateCachePrefix = "credit:"
)

// Deps holds every long-lived component of the process.
type Deps struct {
	Config config.Config
	DB     *gorm.DB
	Redis  *redis.Client

	Producer mq.Producer
	Notifier notify.Notifier

	Catalog   *catalog.Service
	Wallets   *wallet.Store
	Rates     *unlock.RateProvider
	Ledger    *purchase.Ledger
	Unlocks   *unlock.Engine
	Payouts   *payout.Service
	Processor *payout.Processor
	Cron      *service.CronService
	Relay     *service.RelayService
}

// Build connects postgres and redis and wires the services. The caller
// owns the result and must Close it.
func Build(ctx context.Context, cfg config.Config) (*Deps, error) {
	db, err := database.ConnectPostgres(cfg.DB)
	if err != nil {
		return nil, err
	}

	if cfg.App.Env == "development" {
		logger.Info("Running AutoMigrate (development)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	rdb, err := database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	verifiers, payoutGateway, err := Gateways(cfg.Gateway)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	d := &Deps{Config: cfg, DB: db, Redis: rdb}
	d.Producer = mq.NewProducer(cfg, rdb)
	d.Notifier = notify.NewOutboxNotifier(db)

	rateCache := cache.NewMultiLevelCache(
		cache.NewMemoryCache(cfg.Ledger.RateCacheTTL, 2*cfg.Ledger.RateCacheTTL),
		cache.NewRedisCache(rdb, rateCachePrefix),
	)
	d.Rates = unlock.NewRateProvider(db, rateCache, cfg.Ledger.RateCacheTTL, cfg.Ledger.DefaultUSDPerCredit)

	d.Catalog = catalog.NewService(db)
	d.Wallets = wallet.NewStore(db)
	d.Ledger = purchase.NewLedger(db, d.Catalog, verifiers, d.Rates, d.Notifier, purchase.Options{
		Currency:      cfg.Ledger.Currency,
		VerifyTimeout: cfg.Gateway.VerifyTimeout,
	})
	d.Unlocks = unlock.NewEngine(db, d.Catalog, d.Rates, d.Notifier, cfg.Ledger.PlatformFeePercent, cfg.Ledger.Currency)
	d.Payouts = payout.NewService(db, d.Notifier, cfg.Payout.DefaultMinimum, cfg.Ledger.Currency)
	d.Processor = payout.NewProcessor(db, payoutGateway, d.Notifier, payout.ProcessorOptions{
		GatewayTimeout: cfg.Payout.GatewayTimeout,
		BatchSize:      cfg.Payout.BatchSize,
		Note:           cfg.Payout.Note,
	})
	d.Cron = service.NewCronService(lock.NewRedisLock(rdb), d.Processor, d.Payouts, cfg.Payout)
	d.Relay = service.NewRelayService(db, d.Producer)

	logger.Info("Services wired",
		zap.String("gateway_mode", cfg.Gateway.Mode),
		zap.String("mq_type", cfg.Redis.MQType))
	return d, nil
}

// Gateways returns the payment verifiers and the payout gateway for mode.
// Stub mode never calls out and is meant for development.
func Gateways(cfg config.GatewayConfig) (*gateway.Registry, gateway.PayoutGateway, error) {
	reg := gateway.NewRegistry()
	switch cfg.Mode {
	case GatewayStub, "":
		reg.Register(model.ProviderStripe, gateway.StubVerifier{})
		reg.Register(model.ProviderPaypal, gateway.StubVerifier{})
		return reg, gateway.StubPayoutGateway{}, nil
	case GatewayLive:
		if cfg.StripeSecretKey == "" || cfg.PaypalClientID == "" || cfg.PaypalClientSecret == "" {
			return nil, nil, fmt.Errorf("gateway mode %q requires stripe and paypal credentials", cfg.Mode)
		}
		paypal := gateway.NewPaypalClient(cfg.PaypalBaseURL, cfg.PaypalClientID, cfg.PaypalClientSecret)
		reg.Register(model.ProviderStripe, gateway.NewStripeVerifier(cfg.StripeBaseURL, cfg.StripeSecretKey))
		reg.Register(model.ProviderPaypal, paypal)
		return reg, paypal, nil
	default:
		return nil, nil, fmt.Errorf("unknown gateway mode %q", cfg.Mode)
	}
}

// Close stops the scheduler and releases connections.
func (d *Deps) Close() {
	d.Cron.Stop()
	if err := d.Producer.Close(); err != nil {
		logger.Error("Failed to close producer", zap.Error(err))
	}
	if err := d.Redis.Close(); err != nil {
		logger.Error("Failed to close redis", zap.Error(err))
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

