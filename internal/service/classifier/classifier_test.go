package classifier

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

func TestClassifierClassify(t *testing.T) {
	t.Parallel()

	sut := NewClassifier()

	tests := []struct {
		name string
		err  error

		wantKind      model.ErrorKind
		wantRetryable bool
		wantMessage   string
	}{
		{
			name: "card error surfaces gateway message verbatim",
			err: &stripe.Error{
				Type: stripe.ErrorTypeCard,
				Code: stripe.ErrorCodeCardDeclined,
				Msg:  "Your card was declined.",
			},
			wantKind:      model.KindInputError,
			wantRetryable: true,
			wantMessage:   "Your card was declined.",
		},
		{
			name: "card error without message falls back to generic",
			err: &stripe.Error{
				Type: stripe.ErrorTypeCard,
				Code: stripe.ErrorCodeIncorrectCVC,
			},
			wantKind:      model.KindInputError,
			wantRetryable: true,
			wantMessage:   msgGeneric,
		},
		{
			name: "confirm of an already succeeded intent is reclassified",
			err: &stripe.Error{
				Type: stripe.ErrorTypeInvalidRequest,
				Code: stripe.ErrorCodePaymentIntentUnexpectedState,
				PaymentIntent: &stripe.PaymentIntent{
					Status: stripe.PaymentIntentStatusSucceeded,
				},
			},
			wantKind:      model.KindAlreadySettled,
			wantRetryable: false,
			wantMessage:   msgAlreadySettled,
		},
		{
			name: "unexpected state without a succeeded intent stays transient",
			err: &stripe.Error{
				Type: stripe.ErrorTypeInvalidRequest,
				Code: stripe.ErrorCodePaymentIntentUnexpectedState,
				PaymentIntent: &stripe.PaymentIntent{
					Status: stripe.PaymentIntentStatusRequiresPaymentMethod,
				},
			},
			wantKind:      model.KindTransientError,
			wantRetryable: true,
			wantMessage:   msgGeneric,
		},
		{
			name:          "plain network error is transient",
			err:           errors.New("connection reset by peer"),
			wantKind:      model.KindTransientError,
			wantRetryable: true,
			wantMessage:   msgGeneric,
		},
		{
			name:          "context deadline is transient",
			err:           context.DeadlineExceeded,
			wantKind:      model.KindTransientError,
			wantRetryable: true,
			wantMessage:   msgGeneric,
		},
		{
			name: "wrapped stripe error is still unwrapped",
			err: fmt.Errorf("confirm: %w", &stripe.Error{
				Type: stripe.ErrorTypeCard,
				Msg:  "Incorrect card number.",
			}),
			wantKind:      model.KindInputError,
			wantRetryable: true,
			wantMessage:   "Incorrect card number.",
		},
		{
			name:          "nil error is treated as transient",
			err:           nil,
			wantKind:      model.KindTransientError,
			wantRetryable: true,
			wantMessage:   msgGeneric,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := sut.Classify(tt.err)

			require.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantRetryable, got.Retryable)
			assert.Equal(t, tt.wantMessage, got.UserMessage)
		})
	}
}

func TestClassifierClassifyReported(t *testing.T) {
	t.Parallel()

	sut := NewClassifier()

	got := sut.ClassifyReported(model.GatewayConfirmation{
		Status:       model.GatewayStatusFailed,
		ErrorType:    "card_error",
		ErrorMessage: "Your card has expired.",
	})
	require.Equal(t, model.KindInputError, got.Kind)
	assert.True(t, got.Retryable)
	assert.Equal(t, "Your card has expired.", got.UserMessage)

	got = sut.ClassifyReported(model.GatewayConfirmation{
		Status:    model.GatewayStatusFailed,
		ErrorType: "api_error",
	})
	require.Equal(t, model.KindTransientError, got.Kind)
	assert.True(t, got.Retryable)
	assert.Equal(t, msgGeneric, got.UserMessage)
}
