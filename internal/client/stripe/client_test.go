package stripeclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

func TestIntentIDFromHandle(t *testing.T) {
	t.Parallel()

	id, err := intentIDFromHandle("pi_3Abc_secret_xyz")
	require.NoError(t, err)
	assert.Equal(t, "pi_3Abc", id)

	_, err = intentIDFromHandle("not-a-client-secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	_, err = intentIDFromHandle("_secret_xyz")
	require.Error(t, err)
}

func TestConfirmationFromIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		intent *stripe.PaymentIntent
		want   model.GatewayConfirmation
	}{
		{
			name:   "succeeded",
			intent: &stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusSucceeded},
			want:   model.GatewayConfirmation{ID: "pi_1", Status: model.GatewayStatusSucceeded},
		},
		{
			name:   "processing",
			intent: &stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusProcessing},
			want:   model.GatewayConfirmation{ID: "pi_1", Status: model.GatewayStatusProcessing},
		},
		{
			name:   "requires action",
			intent: &stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusRequiresAction},
			want:   model.GatewayConfirmation{ID: "pi_1", Status: model.GatewayStatusRequiresAction},
		},
		{
			name: "requires payment method carries the decline",
			intent: &stripe.PaymentIntent{
				ID:     "pi_1",
				Status: stripe.PaymentIntentStatusRequiresPaymentMethod,
				LastPaymentError: &stripe.Error{
					Type: stripe.ErrorTypeCard,
					Msg:  "Your card was declined.",
				},
			},
			want: model.GatewayConfirmation{
				ID:           "pi_1",
				Status:       model.GatewayStatusFailed,
				ErrorType:    "card_error",
				ErrorMessage: "Your card was declined.",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, confirmationFromIntent(tt.intent))
		})
	}
}
