package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

type SettlementService interface {
	Initiate(ctx context.Context, params model.InitiateParams) (*model.Settlement, error)
	Confirm(ctx context.Context, id uuid.UUID) (*model.SettlementResult, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	SettlementByID(ctx context.Context, id uuid.UUID) (*model.Settlement, error)
}

type handler struct {
	svc SettlementService
}

func NewSettlementHandler(service SettlementService) *handler {
	return &handler{svc: service}
}

func (h *handler) Register(r chi.Router) {
	r.Route("/api/v1/settlements", func(r chi.Router) {
		r.Post("/", h.InitiateSettlement)
		r.Route("/{settlement_uuid}", func(r chi.Router) {
			r.Get("/", h.GetSettlement)
			r.Post("/confirm", h.ConfirmSettlement)
			r.Post("/cancel", h.CancelSettlement)
		})
	})
}

type initiateRequest struct {
	TaskID          int64  `json:"task_id"`
	CouponCode      string `json:"coupon_code,omitempty"`
	PointsRequested int64  `json:"points_requested,omitempty"`
	PointsBalance   int64  `json:"points_balance,omitempty"`
	ChargeMethod    string `json:"charge_method"`
}

type breakdownResponse struct {
	TotalAmount           int64  `json:"total_amount"`
	PointsApplied         int64  `json:"points_applied"`
	CouponDiscount        int64  `json:"coupon_discount"`
	ResidualGatewayAmount int64  `json:"residual_gateway_amount"`
	Currency              string `json:"currency"`
	ConfirmationHandle    string `json:"confirmation_handle,omitempty"`
	Note                  string `json:"note,omitempty"`
}

type attemptResponse struct {
	Status       string `json:"status"`
	AttemptCount int    `json:"attempt_count"`
	LastError    string `json:"last_error,omitempty"`
	Retryable    bool   `json:"retryable,omitempty"`
}

type settlementResponse struct {
	SettlementUUID string            `json:"settlement_uuid"`
	State          string            `json:"state"`
	Breakdown      breakdownResponse `json:"breakdown"`
	Attempt        attemptResponse   `json:"attempt"`
}

type resultResponse struct {
	Outcome   string            `json:"outcome"`
	Message   string            `json:"message,omitempty"`
	Breakdown breakdownResponse `json:"breakdown"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *handler) InitiateSettlement(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stl, err := h.svc.Initiate(r.Context(), model.InitiateParams{
		Request: model.PaymentRequest{
			TaskID:          req.TaskID,
			CouponCode:      req.CouponCode,
			PointsRequested: req.PointsRequested,
			ChargeMethod:    chargeMethodFromWire(req.ChargeMethod),
		},
		PointsBalance: req.PointsBalance,
	})
	if err != nil {
		writeMappedError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, settlementToResponse(stl))
}

func (h *handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := settlementID(w, r)
	if !ok {
		return
	}

	stl, err := h.svc.SettlementByID(r.Context(), id)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settlementToResponse(stl))
}

func (h *handler) ConfirmSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := settlementID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Confirm(r.Context(), id)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{
		Outcome:   string(res.Outcome),
		Message:   res.Message,
		Breakdown: breakdownToResponse(res.Breakdown),
	})
}

func (h *handler) CancelSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := settlementID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Cancel(r.Context(), id); err != nil {
		writeMappedError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func settlementID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "settlement_uuid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid settlement_uuid")
		return uuid.Nil, false
	}
	return id, true
}

func chargeMethodFromWire(m string) model.ChargeMethod {
	switch m {
	case "gateway":
		return model.ChargeMethodGateway
	case "points":
		return model.ChargeMethodPoints
	case "mixed":
		return model.ChargeMethodMixed
	default:
		return model.ChargeMethodUnknown
	}
}

func settlementToResponse(stl *model.Settlement) settlementResponse {
	resp := settlementResponse{
		SettlementUUID: stl.ID.String(),
		State:          string(stl.State),
		Breakdown:      breakdownToResponse(stl.Breakdown),
		Attempt: attemptResponse{
			Status:       string(stl.Attempt.Status),
			AttemptCount: stl.Attempt.AttemptCount,
		},
	}
	if stl.Attempt.LastError != nil {
		resp.Attempt.LastError = stl.Attempt.LastError.UserMessage
		resp.Attempt.Retryable = stl.Attempt.LastError.Retryable
	}
	return resp
}

func breakdownToResponse(b model.PaymentBreakdown) breakdownResponse {
	return breakdownResponse{
		TotalAmount:           b.TotalAmount,
		PointsApplied:         b.PointsApplied,
		CouponDiscount:        b.CouponDiscount,
		ResidualGatewayAmount: b.ResidualGatewayAmount,
		Currency:              b.Currency,
		ConfirmationHandle:    b.ConfirmationHandle,
		Note:                  b.Note,
	}
}

func writeMappedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error()) // 400
	case errors.Is(err, model.ErrSettlementNotFound):
		writeError(w, http.StatusNotFound, err.Error()) // 404
	case errors.Is(err, model.ErrSettlementConflict),
		errors.Is(err, model.ErrConfirmationInFlight):
		writeError(w, http.StatusConflict, err.Error()) // 409
	case errors.Is(err, model.ErrSessionOpenFailed),
		errors.Is(err, model.ErrBadGateway):
		writeError(w, http.StatusBadGateway, err.Error()) // 502
	default:
		writeError(w, http.StatusInternalServerError, err.Error()) // 500
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
