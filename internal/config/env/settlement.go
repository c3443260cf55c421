package envconfig

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type settlementEnv struct {
	ReconcileWindow  time.Duration `env:"SETTLEMENT_RECONCILE_WINDOW" envDefault:"5m"`
	ReconcileBackoff time.Duration `env:"SETTLEMENT_RECONCILE_BACKOFF" envDefault:"2s"`
	SessionTTL       time.Duration `env:"SETTLEMENT_SESSION_TTL" envDefault:"1h"`
}

type settlement struct {
	raw settlementEnv
}

func NewSettlementConfig() (*settlement, error) {
	var raw settlementEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &settlement{raw: raw}, nil
}

func (cfg *settlement) ReconcileWindow() time.Duration { return cfg.raw.ReconcileWindow }
func (cfg *settlement) ReconcileBackoff() time.Duration { return cfg.raw.ReconcileBackoff }
func (cfg *settlement) SessionTTL() time.Duration { return cfg.raw.SessionTTL }
