package converter

import (
	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

// Wire values for charge_method accepted by the fees backend.
const (
	wireMethodGateway = "gateway"
	wireMethodPoints  = "points"
	wireMethodMixed   = "mixed"
)

func ChargeMethodToWire(m model.ChargeMethod) string {
	switch m {
	case model.ChargeMethodGateway:
		return wireMethodGateway
	case model.ChargeMethodPoints:
		return wireMethodPoints
	case model.ChargeMethodMixed:
		return wireMethodMixed
	default:
		return ""
	}
}
