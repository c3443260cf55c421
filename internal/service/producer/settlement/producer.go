package stlproducer

import (
	"context"
	"fmt"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
	"github.com/ZIon2025-x/linku-settlement/pkg/kafka"
)

type Converter interface {
	FinalizedEventToPayload(e model.FinalizedEvent) ([]byte, error)
}

type service struct {
	producer kafka.Producer
	conv     Converter
}

func NewSettlementProducer(producer kafka.Producer, conv Converter) *service {
	return &service{producer: producer, conv: conv}
}

func (s *service) SendSettlementFinalized(ctx context.Context, event model.FinalizedEvent) error {
	payload, err := s.conv.FinalizedEventToPayload(event)
	if err != nil {
		return fmt.Errorf("converter finalized_event_to_payload error: %w", err)
	}

	if err := s.producer.Send(ctx, event.SettlementID[:], payload); err != nil {
		return fmt.Errorf("producer to settlement.finalized topic error: %w", err)
	}

	return nil
}
