package model

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid payment request") // 400
	ErrSettlementNotFound   = errors.New("settlement not found")    // 404
	ErrSettlementConflict   = errors.New("settlement conflict")     // 409
	ErrSessionOpenFailed    = errors.New("session open failed")     // 502
	ErrBadGateway           = errors.New("bad gateway")             // 502
	ErrConfirmationInFlight = errors.New("confirmation in flight")
	ErrUnknownStatus        = errors.New("unknown status")
)
