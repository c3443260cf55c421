package converter

import (
	"encoding/json"
	"fmt"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

type finalizedEventRecord struct {
	EventUUID      string `json:"event_uuid"`
	SettlementUUID string `json:"settlement_uuid"`
	TaskID         int64  `json:"task_id"`
	TotalAmount    int64  `json:"total_amount"`
	Residual       int64  `json:"residual"`
	Currency       string `json:"currency"`
	Outcome        string `json:"outcome"`
}

type eventConverter struct{}

func NewEventConverter() *eventConverter { return &eventConverter{} }

func (c *eventConverter) FinalizedEventToPayload(e model.FinalizedEvent) ([]byte, error) {
	payload, err := json.Marshal(finalizedEventRecord{
		EventUUID:      e.EventID.String(),
		SettlementUUID: e.SettlementID.String(),
		TaskID:         e.TaskID,
		TotalAmount:    e.TotalAmount,
		Residual:       e.Residual,
		Currency:       e.Currency,
		Outcome:        string(e.Outcome),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal finalized event: %w", err)
	}

	return payload, nil
}
