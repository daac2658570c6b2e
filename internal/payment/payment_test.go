package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		success bool
		reason  string
	}{
		{
			name:    "valid card",
			req:     Request{Provider: ProviderCard, Amount: 100, CardNumber: "4242 4242 4242 4242"},
			success: true,
		},
		{
			name:   "invalid card",
			req:    Request{Provider: ProviderCard, Amount: 100, CardNumber: "1234"},
			reason: "invalid card number",
		},
		{
			name:    "paypal",
			req:     Request{Provider: ProviderPayPal, Amount: 100},
			success: true,
		},
		{
			name:    "paybud",
			req:     Request{Provider: ProviderPayBud, Amount: 100},
			success: true,
		},
		{
			name:   "user abandoned apple pay",
			req:    Request{Provider: ProviderApplePay, Amount: 100, Decline: true},
			reason: "payment cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Simulator{}.Authorize(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Nil(t, res.Terms)
		})
	}
}

func TestSimulatorAuthorize_Affirm(t *testing.T) {
	res, err := Simulator{}.Authorize(context.Background(), Request{Provider: ProviderAffirm, Amount: 10000, PlanID: "2"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Terms)
	assert.Equal(t, 6, res.Terms.DurationMonths)
	assert.Equal(t, 0.0499, res.Terms.InterestRate)
	assert.Equal(t, int64(10499), res.TotalAmount)

	_, err = Simulator{}.Authorize(context.Background(), Request{Provider: ProviderAffirm, Amount: 10000, PlanID: "9"})
	assert.True(t, errors.Is(err, ErrUnknownPlan))
}

func TestSimulatorAuthorize_UnknownProvider(t *testing.T) {
	_, err := Simulator{}.Authorize(context.Background(), Request{Provider: "venmo"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
