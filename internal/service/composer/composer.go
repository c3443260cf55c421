package composer

import (
	"fmt"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

// composer validates and clamps a payment request before any network
// round trip. It never talks to the fees backend or the gateway.
type composer struct{}

func NewComposer() *composer { return &composer{} }

func (c *composer) Compose(
	requested model.PaymentRequest,
	pointsBalance int64,
) (model.PaymentRequest, error) {
	const op = "settlement.composer.Compose"

	req := requested.Normalize()

	if req.TaskID <= 0 {
		return model.PaymentRequest{}, fmt.Errorf("%s: task_id: %w", op, model.ErrInvalidRequest)
	}
	if pointsBalance < 0 {
		return model.PaymentRequest{}, fmt.Errorf("%s: points balance: %w", op, model.ErrInvalidRequest)
	}

	if req.PointsRequested < 0 {
		req.PointsRequested = 0
	}
	if req.PointsRequested > pointsBalance {
		req.PointsRequested = pointsBalance
	}

	switch req.ChargeMethod {
	case model.ChargeMethodGateway:
		if req.PointsRequested > 0 {
			return model.PaymentRequest{}, fmt.Errorf(
				"%s: gateway method with points: %w", op, model.ErrInvalidRequest)
		}
	case model.ChargeMethodPoints, model.ChargeMethodMixed:
		if req.PointsRequested == 0 {
			return model.PaymentRequest{}, fmt.Errorf(
				"%s: %s method without points: %w", op, req.ChargeMethod, model.ErrInvalidRequest)
		}
	default:
		return model.PaymentRequest{}, fmt.Errorf(
			"%s: charge method %q: %w", op, req.ChargeMethod, model.ErrInvalidRequest)
	}

	return req, nil
}
