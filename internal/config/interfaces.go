package config

import (
	"time"

	"github.com/IBM/sarama"
)

type Server interface {
	Host() string
	Port() int
	Address() string
	ReadTimeout() time.Duration
	ShutdownTimeout() time.Duration
}

type FeesAPI interface {
	BaseURL() string
	Timeout() time.Duration
}

type Gateway interface {
	APIKey() string
}

type Kafka interface {
	Brokers() []string
	SettlementFinalizedTopic() string
	SettlementFinalizedProducerConfig() *sarama.Config
}

type Settlement interface {
	ReconcileWindow() time.Duration
	ReconcileBackoff() time.Duration
	SessionTTL() time.Duration
}

type Logger interface {
	Level() string
	AsJSON() bool
}
