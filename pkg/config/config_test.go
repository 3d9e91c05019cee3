package config

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	cfg, err := decode()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.Ledger.PlatformFeePercent.Equal(decimal.NewFromInt(30)))
	assert.True(t, cfg.Ledger.DefaultUSDPerCredit.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, cfg.Payout.DefaultMinimum.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 30*time.Second, cfg.Payout.GatewayTimeout)
	assert.Equal(t, "@every 20m", cfg.Payout.PollSpec)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestDecodeEnvOverrides(t *testing.T) {
	viper.Reset()
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults()

	t.Setenv("LEDGER_PLATFORM_FEE_PERCENT", "12.5")
	t.Setenv("PAYOUT_GATEWAY_TIMEOUT", "5s")

	cfg, err := decode()
	require.NoError(t, err)

	assert.Equal(t, "12.5", cfg.Ledger.PlatformFeePercent.String())
	assert.Equal(t, 5*time.Second, cfg.Payout.GatewayTimeout)
}

func TestDecimalHookRejectsUnknownTypes(t *testing.T) {
	hook := decimalHook()
	_, err := hook(nil, decimalType, []string{"1"})
	assert.Error(t, err)
}

func TestDecodeRejectsFeeOutOfRange(t *testing.T) {
	for _, fee := range []string{"-1", "100.01", "250"} {
		t.Run(fee, func(t *testing.T) {
			viper.Reset()
			setDefaults()
			viper.Set("ledger.platform_fee_percent", fee)

			_, err := decode()
			assert.ErrorContains(t, err, "platform_fee_percent")
		})
	}

	for _, fee := range []string{"0", "100"} {
		viper.Reset()
		setDefaults()
		viper.Set("ledger.platform_fee_percent", fee)

		cfg, err := decode()
		require.NoError(t, err, fee)
		assert.Equal(t, fee, cfg.Ledger.PlatformFeePercent.String())
	}
}
