package envconfig

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// ======= Fees API =======

type feesAPIEnv struct {
	BaseURL string        `env:"FEES_API_BASE_URL,required"`
	Timeout time.Duration `env:"FEES_API_TIMEOUT" envDefault:"10s"`
}

type feesAPI struct {
	raw feesAPIEnv
}

func NewFeesAPIConfig() (*feesAPI, error) {
	var raw feesAPIEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}

	return &feesAPI{raw: raw}, nil
}

func (cfg *feesAPI) BaseURL() string { return cfg.raw.BaseURL }
func (cfg *feesAPI) Timeout() time.Duration { return cfg.raw.Timeout }

// ======= Payment gateway =======

type gatewayEnv struct {
	APIKey string `env:"STRIPE_API_KEY,required"`
}

type gateway struct {
	raw gatewayEnv
}

func NewGatewayConfig() (*gateway, error) {
	var raw gatewayEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &gateway{raw: raw}, nil
}

func (cfg *gateway) APIKey() string { return cfg.raw.APIKey }
