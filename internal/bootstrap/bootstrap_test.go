package bootstrap

import (
	"context"
	"testing"

	"credit-core/internal/gateway"
	"credit-core/internal/model"
	"credit-core/pkg/config"
	"credit-core/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewaysStub(t *testing.T) {
	reg, payouts, err := Gateways(config.GatewayConfig{Mode: GatewayStub})
	require.NoError(t, err)
	assert.IsType(t, gateway.StubPayoutGateway{}, payouts)

	v, err := reg.Verifier(model.ProviderPaypal)
	require.NoError(t, err)
	ok, err := v.Verify(context.Background(), "stub_order_1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = reg.Verifier(model.PaymentProvider("APPLE"))
	assert.ErrorIs(t, err, errno.ErrUnsupportedProvider)
}

func TestGatewaysLive(t *testing.T) {
	_, _, err := Gateways(config.GatewayConfig{Mode: GatewayLive})
	assert.Error(t, err, "live mode needs credentials")

	reg, payouts, err := Gateways(config.GatewayConfig{
		Mode:               GatewayLive,
		StripeBaseURL:      "http://stripe.invalid",
		StripeSecretKey:    "sk_test",
		PaypalBaseURL:      "http://paypal.invalid",
		PaypalClientID:     "id",
		PaypalClientSecret: "secret",
	})
	require.NoError(t, err)
	assert.IsType(t, &gateway.PaypalClient{}, payouts)

	v, err := reg.Verifier(model.ProviderStripe)
	require.NoError(t, err)
	assert.IsType(t, &gateway.StripeVerifier{}, v)
}

func TestGatewaysUnknownMode(t *testing.T) {
	_, _, err := Gateways(config.GatewayConfig{Mode: "sandbox"})
	assert.Error(t, err)
}
