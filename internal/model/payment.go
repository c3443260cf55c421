package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	ChargeMethod       string
	ConfirmationStatus string
	SettlementState    string
	GatewayStatus      string
	ErrorKind          string
	Outcome            string
)

const (
	ChargeMethodUnknown ChargeMethod = "CHARGE_METHOD_UNKNOWN"
	ChargeMethodGateway ChargeMethod = "CHARGE_METHOD_GATEWAY"
	ChargeMethodPoints  ChargeMethod = "CHARGE_METHOD_POINTS"
	ChargeMethodMixed   ChargeMethod = "CHARGE_METHOD_MIXED"
)

const (
	ConfirmationIdle           ConfirmationStatus = "IDLE"
	ConfirmationSubmitting     ConfirmationStatus = "SUBMITTING"
	ConfirmationRequiresAction ConfirmationStatus = "REQUIRES_ACTION"
	ConfirmationSucceeded      ConfirmationStatus = "SUCCEEDED"
	ConfirmationFailed         ConfirmationStatus = "FAILED"
	ConfirmationProcessing     ConfirmationStatus = "PROCESSING"
)

const (
	StateAwaitingConfirmation SettlementState = "AWAITING_CONFIRMATION"
	StateSettled              SettlementState = "SETTLED"
	StateCancelled            SettlementState = "CANCELLED"
)

// Statuses reported by the payment gateway for a confirmation call.
const (
	GatewayStatusSucceeded      GatewayStatus = "succeeded"
	GatewayStatusRequiresAction GatewayStatus = "requires_action"
	GatewayStatusProcessing     GatewayStatus = "processing"
	GatewayStatusFailed         GatewayStatus = "failed"
)

const (
	KindInputError     ErrorKind = "INPUT_ERROR"
	KindTransientError ErrorKind = "TRANSIENT_ERROR"
	KindAlreadySettled ErrorKind = "ALREADY_SETTLED"
)

const (
	OutcomeSettled               Outcome = "SETTLED"
	OutcomePendingReconciliation Outcome = "PENDING_RECONCILIATION"
	OutcomeRequiresAction        Outcome = "REQUIRES_ACTION"
	OutcomeFailed                Outcome = "FAILED"
)

// PaymentRequest is the user's input for one settlement attempt.
// Immutable once submitted; Normalize returns the canonical copy.
type PaymentRequest struct {
	TaskID          int64
	CouponCode      string
	PointsRequested int64
	ChargeMethod    ChargeMethod
}

func (r PaymentRequest) Normalize() PaymentRequest {
	r.CouponCode = strings.ToUpper(strings.TrimSpace(r.CouponCode))
	return r
}

// PaymentBreakdown is computed by the fees backend when a session is opened.
// All amounts are in minor units of Currency.
type PaymentBreakdown struct {
	TotalAmount           int64
	PointsApplied         int64
	CouponDiscount        int64
	ResidualGatewayAmount int64
	Currency              string
	// Opaque token binding the confirmation attempt to the opened
	// session; present iff ResidualGatewayAmount > 0.
	ConfirmationHandle string
	SessionID          string
	Note               string
}

// Consistent reports whether the breakdown sums up and carries a
// confirmation handle exactly when a residual charge remains.
func (b PaymentBreakdown) Consistent() bool {
	if b.TotalAmount < 0 || b.PointsApplied < 0 || b.CouponDiscount < 0 || b.ResidualGatewayAmount < 0 {
		return false
	}
	if b.TotalAmount != b.PointsApplied+b.CouponDiscount+b.ResidualGatewayAmount {
		return false
	}
	return (b.ResidualGatewayAmount > 0) == (b.ConfirmationHandle != "")
}

type Classification struct {
	Kind        ErrorKind
	UserMessage string
	Retryable   bool
}

// ConfirmationAttempt is the observable state of one confirmation handle.
type ConfirmationAttempt struct {
	Status       ConfirmationStatus
	LastError    *Classification
	AttemptCount int
	SubmittedAt  time.Time
}

func (a ConfirmationAttempt) Terminal() bool {
	return a.Status == ConfirmationSucceeded || a.Status == ConfirmationFailed
}

// GatewayConfirmation is the gateway's answer to a confirm or status call.
type GatewayConfirmation struct {
	ID           string
	Status       GatewayStatus
	ErrorType    string
	ErrorMessage string
}

// Settlement is the service-side aggregate for one checkout attempt.
type Settlement struct {
	ID        uuid.UUID
	Request   PaymentRequest
	Breakdown PaymentBreakdown
	Attempt   ConfirmationAttempt
	State     SettlementState
	CreatedAt time.Time
}

type SettlementResult struct {
	Outcome   Outcome
	Message   string
	Breakdown PaymentBreakdown
}

type InitiateParams struct {
	Request       PaymentRequest
	PointsBalance int64
}

// FinalizedEvent is published once a settlement reaches a settled state.
type FinalizedEvent struct {
	EventID      uuid.UUID
	SettlementID uuid.UUID
	TaskID       int64
	TotalAmount  int64
	Residual     int64
	Currency     string
	Outcome      Outcome
}
