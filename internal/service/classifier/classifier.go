package classifier

import (
	"errors"

	"github.com/stripe/stripe-go/v79"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

const (
	msgGeneric        = "payment could not be completed, please try again"
	msgAlreadySettled = "payment already completed"
)

// classifier maps raw gateway and transport failures into the small
// taxonomy the settlement flow acts on. Errors meaning "this handle was
// already confirmed" are reclassified as success so a slow UI racing a
// fast webhook never surfaces a spurious failure.
type classifier struct{}

func NewClassifier() *classifier { return &classifier{} }

func (c *classifier) Classify(rawErr error) model.Classification {
	if rawErr == nil {
		return model.Classification{
			Kind:        model.KindTransientError,
			UserMessage: msgGeneric,
			Retryable:   true,
		}
	}

	var stripeErr *stripe.Error
	if !errors.As(rawErr, &stripeErr) {
		return model.Classification{
			Kind:        model.KindTransientError,
			UserMessage: msgGeneric,
			Retryable:   true,
		}
	}

	if alreadySettled(stripeErr) {
		return model.Classification{
			Kind:        model.KindAlreadySettled,
			UserMessage: msgAlreadySettled,
			Retryable:   false,
		}
	}

	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		return model.Classification{
			Kind:        model.KindInputError,
			UserMessage: userMessage(stripeErr),
			Retryable:   true,
		}
	default:
		return model.Classification{
			Kind:        model.KindTransientError,
			UserMessage: msgGeneric,
			Retryable:   true,
		}
	}
}

// ClassifyReported handles failures the gateway reports in-band, as a
// failed confirmation status rather than a raised error.
func (c *classifier) ClassifyReported(conf model.GatewayConfirmation) model.Classification {
	if conf.ErrorType == string(stripe.ErrorTypeCard) && conf.ErrorMessage != "" {
		return model.Classification{
			Kind:        model.KindInputError,
			UserMessage: conf.ErrorMessage,
			Retryable:   true,
		}
	}

	return model.Classification{
		Kind:        model.KindTransientError,
		UserMessage: msgGeneric,
		Retryable:   true,
	}
}

// A confirm call against an already-succeeded intent comes back as
// payment_intent_unexpected_state with the succeeded intent attached.
func alreadySettled(sErr *stripe.Error) bool {
	if sErr.Code != stripe.ErrorCodePaymentIntentUnexpectedState {
		return false
	}
	return sErr.PaymentIntent != nil &&
		sErr.PaymentIntent.Status == stripe.PaymentIntentStatusSucceeded
}

func userMessage(sErr *stripe.Error) string {
	if sErr.Msg != "" {
		return sErr.Msg
	}
	return msgGeneric
}
