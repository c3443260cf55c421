package feesclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ZIon2025-x/linku-settlement/internal/client/converter"
	"github.com/ZIon2025-x/linku-settlement/internal/model"
	"github.com/ZIon2025-x/linku-settlement/pkg/logger"
)

// Session status values reported by the fees backend's webhook listener.
const (
	SessionStatusFinalized = "finalized"
	SessionStatusPending   = "pending"
	SessionStatusFailed    = "failed"
)

type client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *client {
	return &client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

type openSessionRequest struct {
	TaskID       int64  `json:"task_id"`
	CouponCode   string `json:"coupon_code,omitempty"`
	PointsAmount int64  `json:"points_amount,omitempty"`
	ChargeMethod string `json:"charge_method"`
}

type openSessionResponse struct {
	TotalAmount           int64  `json:"total_amount"`
	PointsApplied         int64  `json:"points_applied"`
	CouponDiscount        int64  `json:"coupon_discount"`
	ResidualGatewayAmount int64  `json:"residual_gateway_amount"`
	Currency              string `json:"currency"`
	ConfirmationHandle    string `json:"confirmation_handle,omitempty"`
	SessionID             string `json:"session_id,omitempty"`
	Note                  string `json:"note,omitempty"`
}

type sessionStatusResponse struct {
	Status string `json:"status"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OpenSession asks the fees backend to price the request and open a
// payment session. Exactly one call, no retry: a blind retry against a
// backend that already created a session could double-charge, so a
// transport failure is surfaced and the user re-triggers explicitly.
func (c *client) OpenSession(
	ctx context.Context,
	req model.PaymentRequest,
) (*model.PaymentBreakdown, error) {
	const op = "fees.client.OpenSession"

	body, err := json.Marshal(openSessionRequest{
		TaskID:       req.TaskID,
		CouponCode:   req.CouponCode,
		PointsAmount: req.PointsRequested,
		ChargeMethod: converter.ChargeMethodToWire(req.ChargeMethod),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: marshal: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/payments/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error(ctx, "open session transport failure", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w: %w", op, model.ErrSessionOpenFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp.Body)
		logger.Error(ctx, "open session rejected",
			logger.Int("status_code", resp.StatusCode),
			logger.String("message", apiErr.Message),
		)
		if resp.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%s: %s: %w", op, apiErr.Message, model.ErrInvalidRequest)
		}
		return nil, fmt.Errorf("%s: status %d: %w", op, resp.StatusCode, model.ErrSessionOpenFailed)
	}

	var payload openSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%s: decode: %w: %w", op, model.ErrSessionOpenFailed, err)
	}

	breakdown := model.PaymentBreakdown{
		TotalAmount:           payload.TotalAmount,
		PointsApplied:         payload.PointsApplied,
		CouponDiscount:        payload.CouponDiscount,
		ResidualGatewayAmount: payload.ResidualGatewayAmount,
		Currency:              payload.Currency,
		ConfirmationHandle:    payload.ConfirmationHandle,
		SessionID:             payload.SessionID,
		Note:                  payload.Note,
	}

	if !breakdown.Consistent() {
		logger.Error(ctx, "inconsistent breakdown from fees backend",
			logger.Int64("total_amount", breakdown.TotalAmount),
			logger.Int64("points_applied", breakdown.PointsApplied),
			logger.Int64("coupon_discount", breakdown.CouponDiscount),
			logger.Int64("residual", breakdown.ResidualGatewayAmount),
		)
		return nil, fmt.Errorf("%s: inconsistent breakdown: %w", op, model.ErrSessionOpenFailed)
	}

	return &breakdown, nil
}

// SessionStatus reports whether the backend's webhook listener has seen
// the session finalize. Used for out-of-band reconciliation of a
// confirmation that ended in a processing status.
func (c *client) SessionStatus(ctx context.Context, sessionID string) (string, error) {
	const op = "fees.client.SessionStatus"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/payments/sessions/"+sessionID+"/status", nil)
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", op, err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, model.ErrBadGateway, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: status %d: %w", op, resp.StatusCode, model.ErrBadGateway)
	}

	var payload sessionStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%s: decode: %w", op, err)
	}

	return payload.Status, nil
}

func decodeAPIError(r io.Reader) apiError {
	var apiErr apiError
	if err := json.NewDecoder(r).Decode(&apiErr); err != nil {
		return apiError{Message: "unreadable error body"}
	}
	return apiErr
}
