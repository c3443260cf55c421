package app

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	feesclient "github.com/ZIon2025-x/linku-settlement/internal/client/http/fees"
	stripeclient "github.com/ZIon2025-x/linku-settlement/internal/client/stripe"
	"github.com/ZIon2025-x/linku-settlement/internal/config"
	"github.com/ZIon2025-x/linku-settlement/internal/converter"
	"github.com/ZIon2025-x/linku-settlement/internal/service/classifier"
	"github.com/ZIon2025-x/linku-settlement/internal/service/composer"
	stlproducer "github.com/ZIon2025-x/linku-settlement/internal/service/producer/settlement"
	"github.com/ZIon2025-x/linku-settlement/internal/service/reconciler"
	service "github.com/ZIon2025-x/linku-settlement/internal/service/settlement"
	"github.com/ZIon2025-x/linku-settlement/internal/store/session"
	thttp "github.com/ZIon2025-x/linku-settlement/internal/transport/http/settlement/v1"
	"github.com/ZIon2025-x/linku-settlement/pkg/closer"
	"github.com/ZIon2025-x/linku-settlement/pkg/kafka"
	"github.com/ZIon2025-x/linku-settlement/pkg/kafka/producer"
	"github.com/ZIon2025-x/linku-settlement/pkg/logger"
)

type FeesClient interface {
	service.FeesClient
	reconciler.FeesClient
}

type SessionStore interface {
	service.SessionStore
	StartSweeper(ctx context.Context)
}

type SettlementService interface {
	thttp.SettlementService
	DropLocalState(id uuid.UUID)
}

type SettlementHandler interface {
	Register(r chi.Router)
}

type di struct {
	feesClient    FeesClient
	gatewayClient service.GatewayClient
	classifier    service.Classifier
	composer      service.Composer

	sessionStore SessionStore
	reconciler   service.Reconciler

	syncProducer       sarama.SyncProducer
	finalizedProducer  kafka.Producer
	settlementProducer service.FinalizedSender
	conv               stlproducer.Converter

	service SettlementService
	handler SettlementHandler

	router *chi.Mux
}

func NewDI() *di { return &di{} }

func (d *di) FeesClient(_ context.Context) FeesClient {
	if d.feesClient == nil {
		cfg := config.C()

		d.feesClient = feesclient.NewClient(
			cfg.FeesAPI.BaseURL(),
			cfg.FeesAPI.Timeout(),
		)
	}

	return d.feesClient
}

func (d *di) GatewayClient(_ context.Context) service.GatewayClient {
	if d.gatewayClient == nil {
		d.gatewayClient = stripeclient.NewClient(config.C().Gateway.APIKey())
	}

	return d.gatewayClient
}

func (d *di) Classifier(_ context.Context) service.Classifier {
	if d.classifier == nil {
		d.classifier = classifier.NewClassifier()
	}

	return d.classifier
}

func (d *di) Composer(_ context.Context) service.Composer {
	if d.composer == nil {
		d.composer = composer.NewComposer()
	}

	return d.composer
}

func (d *di) SessionStore(_ context.Context) SessionStore {
	if d.sessionStore == nil {
		d.sessionStore = session.NewStore(
			config.C().Settlement.SessionTTL(),
			session.WithEvictFunc(func(id uuid.UUID) {
				// the service holds the live confirmation controllers;
				// nil until the first settlement wires it up
				if d.service != nil {
					d.service.DropLocalState(id)
				}
			}),
		)
	}

	return d.sessionStore
}

func (d *di) Reconciler(ctx context.Context) service.Reconciler {
	if d.reconciler == nil {
		cfg := config.C()

		d.reconciler = reconciler.NewReconciler(
			d.FeesClient(ctx),
			cfg.Settlement.ReconcileWindow(),
			cfg.Settlement.ReconcileBackoff(),
		)
	}

	return d.reconciler
}

func (d *di) SyncProducer(_ context.Context) sarama.SyncProducer {
	if d.syncProducer == nil {
		cfg := config.C()

		p, err := sarama.NewSyncProducer(
			cfg.Kafka.Brokers(),
			cfg.Kafka.SettlementFinalizedProducerConfig(),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create sync producer: %s\n", err.Error()))
		}
		closer.AddNamed("Kafka sync producer", func(ctx context.Context) error {
			return p.Close()
		})

		d.syncProducer = p
	}

	return d.syncProducer
}

func (d *di) FinalizedProducer(ctx context.Context) kafka.Producer {
	if d.finalizedProducer == nil {
		d.finalizedProducer = producer.NewProducer(
			d.SyncProducer(ctx),
			config.C().Kafka.SettlementFinalizedTopic(),
			logger.L(),
		)
	}

	return d.finalizedProducer
}

func (d *di) EventConverter(_ context.Context) stlproducer.Converter {
	if d.conv == nil {
		d.conv = converter.NewEventConverter()
	}

	return d.conv
}

func (d *di) SettlementProducer(ctx context.Context) service.FinalizedSender {
	if d.settlementProducer == nil {
		d.settlementProducer = stlproducer.NewSettlementProducer(
			d.FinalizedProducer(ctx),
			d.EventConverter(ctx),
		)
	}

	return d.settlementProducer
}

func (d *di) SettlementService(ctx context.Context) SettlementService {
	if d.service == nil {
		d.service = service.NewSettlementService(
			d.Composer(ctx),
			d.FeesClient(ctx),
			d.GatewayClient(ctx),
			d.Classifier(ctx),
			d.SessionStore(ctx),
			d.Reconciler(ctx),
			d.SettlementProducer(ctx),
		)
	}

	return d.service
}

func (d *di) SettlementHandler(ctx context.Context) SettlementHandler {
	if d.handler == nil {
		d.handler = thttp.NewSettlementHandler(d.SettlementService(ctx))
	}

	return d.handler
}

func (d *di) Router(_ context.Context) *chi.Mux {
	if d.router == nil {
		d.router = chi.NewRouter()
	}

	return d.router
}
