package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/tournevent/upsbridge/pkg/shipper/ups"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSKey                    string        `envconfig:"UPS_KEY"`
	UPSLogin                  string        `envconfig:"UPS_LOGIN"`
	UPSPassword               string        `envconfig:"UPS_PASSWORD"`
	UPSOriginAccount          string        `envconfig:"UPS_ORIGIN_ACCOUNT"`
	UPSDestinationAccount     string        `envconfig:"UPS_DESTINATION_ACCOUNT"`
	UPSPickupType             string        `envconfig:"UPS_PICKUP_TYPE" default:"daily_pickup"`
	UPSCustomerClassification string        `envconfig:"UPS_CUSTOMER_CLASSIFICATION"`
	UPSPickupCutoff           string        `envconfig:"UPS_PICKUP_CUTOFF" default:"3pm"`
	UPSTestMode               bool          `envconfig:"UPS_TEST_MODE" default:"false"`
	UPSUseMock                bool          `envconfig:"UPS_USE_MOCK" default:"false"`
	UPSTimeout                time.Duration `envconfig:"UPS_TIMEOUT" default:"30s"`
	UPSTestURL                string        `envconfig:"UPS_TEST_URL" default:"https://wwwcie.ups.com"`
	UPSLiveURL                string        `envconfig:"UPS_LIVE_URL" default:"https://onlinetools.ups.com"`
	UPSTrackConcurrency       int           `envconfig:"UPS_TRACK_CONCURRENCY" default:"4"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.claude.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"upsbridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if _, err := ups.PickupCode(ups.PickupType(cfg.UPSPickupType)); err != nil {
		return nil, fmt.Errorf("loading config: UPS_PICKUP_TYPE: %w", err)
	}
	if cfg.UPSCustomerClassification != "" {
		if _, err := ups.ClassificationCode(ups.CustomerClassification(cfg.UPSCustomerClassification)); err != nil {
			return nil, fmt.Errorf("loading config: UPS_CUSTOMER_CLASSIFICATION: %w", err)
		}
	}
	return &cfg, nil
}

// UPS returns the UPS client configuration.
func (c *Config) UPS() ups.Config {
	test := c.UPSTestMode
	return ups.Config{
		Options: ups.Options{
			Key:                    c.UPSKey,
			Login:                  c.UPSLogin,
			Password:               c.UPSPassword,
			OriginAccount:          c.UPSOriginAccount,
			DestinationAccount:     c.UPSDestinationAccount,
			PickupType:             ups.PickupType(c.UPSPickupType),
			CustomerClassification: ups.CustomerClassification(c.UPSCustomerClassification),
			PickupCutoff:           c.UPSPickupCutoff,
			Test:                   &test,
		},
		UseMock:          c.UPSUseMock,
		Timeout:          c.UPSTimeout,
		TestURL:          c.UPSTestURL,
		LiveURL:          c.UPSLiveURL,
		TrackConcurrency: c.UPSTrackConcurrency,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.test_mode", c.UPSTestMode),
		attribute.Bool("ups.use_mock", c.UPSUseMock),
	}
}
