package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	envconfig "github.com/ZIon2025-x/linku-settlement/internal/config/env"
)

var cfg *config

type config struct {
	Server     Server
	FeesAPI    FeesAPI
	Gateway    Gateway
	Kafka      Kafka
	Settlement Settlement
	Logger     Logger
}

func Load(path ...string) error {
	const op = "config.Load"

	if shouldLoadDotenv() {
		if err := godotenv.Load(path...); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: load .env: %w", op, err)
		}
	}

	serverCfg, err := envconfig.NewHTTPServerConfig()
	if err != nil {
		return fmt.Errorf("%s Server: %w", op, err)
	}

	feesCfg, err := envconfig.NewFeesAPIConfig()
	if err != nil {
		return fmt.Errorf("%s FeesAPI: %w", op, err)
	}

	gatewayCfg, err := envconfig.NewGatewayConfig()
	if err != nil {
		return fmt.Errorf("%s Gateway: %w", op, err)
	}

	kafkaCfg, err := envconfig.NewKafkaConfig()
	if err != nil {
		return fmt.Errorf("%s Kafka: %w", op, err)
	}

	settlementCfg, err := envconfig.NewSettlementConfig()
	if err != nil {
		return fmt.Errorf("%s Settlement: %w", op, err)
	}

	loggerCfg, err := envconfig.NewLoggerConfig()
	if err != nil {
		return fmt.Errorf("%s Logger: %w", op, err)
	}

	cfg = &config{
		Server:     serverCfg,
		FeesAPI:    feesCfg,
		Gateway:    gatewayCfg,
		Kafka:      kafkaCfg,
		Settlement: settlementCfg,
		Logger:     loggerCfg,
	}

	return nil
}

func C() *config { return cfg }

func shouldLoadDotenv() bool {
	return os.Getenv("APP_ENV") == "local"
}
