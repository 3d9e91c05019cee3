package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Payout  PayoutConfig  `mapstructure:"payout"`
	Gateway GatewayConfig `mapstructure:"gateway"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
	GrpcPort string `mapstructure:"grpc_port"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

// LedgerConfig drives credit pricing and the commission split.
type LedgerConfig struct {
	Currency            string          `mapstructure:"currency"`
	PlatformFeePercent  decimal.Decimal `mapstructure:"platform_fee_percent"`
	DefaultUSDPerCredit decimal.Decimal `mapstructure:"default_usd_per_credit"`
	RateCacheTTL        time.Duration   `mapstructure:"rate_cache_ttl"`
}

type PayoutConfig struct {
	DefaultMinimum decimal.Decimal `mapstructure:"default_minimum"`
	SubmitSpec     string          `mapstructure:"submit_spec"`
	PollSpec       string          `mapstructure:"poll_spec"`
	AutoPayoutSpec string          `mapstructure:"auto_payout_spec"`
	GatewayTimeout time.Duration   `mapstructure:"gateway_timeout"`
	BatchSize      int             `mapstructure:"batch_size"`
	Note           string          `mapstructure:"note"`
	LockTTL        time.Duration   `mapstructure:"lock_ttl"`
}

type GatewayConfig struct {
	Mode               string        `mapstructure:"mode"` // "live" or "stub"
	VerifyTimeout      time.Duration `mapstructure:"verify_timeout"`
	StripeBaseURL      string        `mapstructure:"stripe_base_url"`
	StripeSecretKey    string        `mapstructure:"stripe_secret_key"`
	PaypalBaseURL      string        `mapstructure:"paypal_base_url"`
	PaypalClientID     string        `mapstructure:"paypal_client_id"`
	PaypalClientSecret string        `mapstructure:"paypal_client_secret"`
}

var Global Config

func Init() {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	cfg, err := decode()
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	Global = cfg

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// decode unmarshals the viper state. Money settings are decoded into
// decimal.Decimal so "0.30" in yaml and LEDGER_PLATFORM_FEE_PERCENT keep their exact value.
func decode() (Config, error) {
	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		decimalHook(),
	)
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return Config{}, err
	}
	if fee := cfg.Ledger.PlatformFeePercent; fee.IsNegative() || fee.GreaterThan(decimal.NewFromInt(100)) {
		return Config{}, fmt.Errorf("ledger.platform_fee_percent must be within [0, 100], got %s", fee)
	}
	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")
	viper.SetDefault("app.grpc_port", "50051")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "credit_user")
	viper.SetDefault("db.password", "credit_password")
	viper.SetDefault("db.name", "credit_db")
	viper.SetDefault("db.max_idle_conns", 10)
	viper.SetDefault("db.max_open_conns", 100)
	viper.SetDefault("db.conn_max_lifetime", time.Hour)

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.mq_type", "redis")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})

	viper.SetDefault("ledger.currency", "USD")
	viper.SetDefault("ledger.platform_fee_percent", "30")
	viper.SetDefault("ledger.default_usd_per_credit", "0.01")
	viper.SetDefault("ledger.rate_cache_ttl", time.Minute)

	viper.SetDefault("payout.default_minimum", "25")
	viper.SetDefault("payout.submit_spec", "@every 1h")
	viper.SetDefault("payout.poll_spec", "@every 20m")
	viper.SetDefault("payout.auto_payout_spec", "@daily")
	viper.SetDefault("payout.gateway_timeout", 30*time.Second)
	viper.SetDefault("payout.batch_size", 50)
	viper.SetDefault("payout.note", "BookSocial author payout")
	viper.SetDefault("payout.lock_ttl", 10*time.Minute)

	viper.SetDefault("gateway.mode", "stub")
	viper.SetDefault("gateway.verify_timeout", 15*time.Second)
	viper.SetDefault("gateway.stripe_base_url", "https://api.stripe.com")
	viper.SetDefault("gateway.paypal_base_url", "https://api-m.sandbox.paypal.com")
}
