package stripeclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

// client adapts the gateway's confirmation API to the model types the
// confirmation controller works with. Step-up authentication (3DS-style
// challenges) happens inside the gateway's own surface; here only the
// eventual intent status is observed.
type gatewayClient struct {
	api *client.API
}

func NewClient(apiKey string) *gatewayClient {
	sc := &client.API{}
	sc.Init(apiKey, nil)

	return &gatewayClient{api: sc}
}

func (c *gatewayClient) Confirm(
	ctx context.Context,
	handle string,
) (model.GatewayConfirmation, error) {
	const op = "stripe.client.Confirm"

	intentID, err := intentIDFromHandle(handle)
	if err != nil {
		return model.GatewayConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	intent, err := c.api.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return model.GatewayConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	return confirmationFromIntent(intent), nil
}

func confirmationFromIntent(intent *stripe.PaymentIntent) model.GatewayConfirmation {
	conf := model.GatewayConfirmation{ID: intent.ID}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		conf.Status = model.GatewayStatusSucceeded
	case stripe.PaymentIntentStatusProcessing:
		conf.Status = model.GatewayStatusProcessing
	case stripe.PaymentIntentStatusRequiresAction:
		conf.Status = model.GatewayStatusRequiresAction
	default:
		conf.Status = model.GatewayStatusFailed
		if intent.LastPaymentError != nil {
			conf.ErrorType = string(intent.LastPaymentError.Type)
			conf.ErrorMessage = intent.LastPaymentError.Msg
		}
	}

	return conf
}

// The confirmation handle is an intent client secret of the form
// pi_xxx_secret_yyy; the API addresses the intent by the pi_xxx part.
func intentIDFromHandle(handle string) (string, error) {
	id, _, found := strings.Cut(handle, "_secret")
	if !found || id == "" {
		return "", fmt.Errorf("malformed confirmation handle: %w", model.ErrInvalidRequest)
	}
	return id, nil
}
