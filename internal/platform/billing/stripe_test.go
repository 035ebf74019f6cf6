package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	cfgpkg "github.com/glowclinic/refillhub/pkg/config"
)

func newTestGateway() *StripeGateway {
	cfg := &cfgpkg.Config{Clinics: []*cfgpkg.ClinicBillingAccount{
		{ClinicID: "clinic-a", SecretKey: "sk_test_a"},
		{ClinicID: "clinic-b", SecretKey: "sk_test_b"},
	}}
	return NewStripeGateway(cfg, zap.NewNop().Sugar()).(*StripeGateway)
}

func TestClientFor_UnknownClinicIsGatewayError(t *testing.T) {
	g := newTestGateway()
	_, err := g.clientFor("clinic-x")
	assert.ErrorIs(t, err, ErrRemoteGateway)
}

func TestClientFor_CachesPerClinic(t *testing.T) {
	g := newTestGateway()

	a1, err := g.clientFor("clinic-a")
	require.NoError(t, err)
	a2, err := g.clientFor("clinic-a")
	require.NoError(t, err)
	b, err := g.clientFor("clinic-b")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
}

func TestWrapErr_SanitizesProviderDetail(t *testing.T) {
	g := newTestGateway()

	err := g.wrapErr(context.Background(), "charge saved payment method", &stripe.Error{
		Code: stripe.ErrorCodeCardDeclined,
		Msg:  "Your card ending in 4242 was declined.",
	})
	require.ErrorIs(t, err, ErrRemoteGateway)
	assert.Contains(t, err.Error(), "card_declined")
	// instrument detail from the provider never surfaces
	assert.NotContains(t, err.Error(), "4242")

	err = g.wrapErr(context.Background(), "pause collection", assert.AnError)
	require.ErrorIs(t, err, ErrRemoteGateway)
	assert.NotContains(t, err.Error(), assert.AnError.Error())
}
