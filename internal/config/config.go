// Package config holds the storefront client configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	Client     config.ClientConfig     `koanf:"client"`
	Guard      config.GuardConfig      `koanf:"guard"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Storage    config.StorageConfig    `koanf:"storage"`
	Log        config.LogConfig        `koanf:"log"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Stub       config.HTTPConfig       `koanf:"stub"`
}

// Defaults returns the values used when no source overrides them.
// It does not read the receiver, so it is safe to call on a nil *Config.
func (c *Config) Defaults() map[string]any {
	guard := config.DefaultGuardConfig()
	return map[string]any{
		"client.baseurl":                    "http://localhost:5000",
		"client.timeout":                    "10s",
		"guard.throttle":                    guard.Throttle.String(),
		"guard.debounce":                    guard.Debounce.String(),
		"guard.searchlimit":                 guard.SearchLimit,
		"resilience.circuitbreaker.enabled": true,
		"resilience.circuitbreaker.consecutivefailures": 5,
		"resilience.circuitbreaker.errorratepercent":    60,
		"resilience.circuitbreaker.opentimeout":         "5s",
		"storage.path":                                  "storefront.db",
		"log.level":                                     "info",
		"log.format":                                    "json",
		"telemetry.traces.otlphttp.timeout":             "5s",
		"stub.port":                                     5000,
		"stub.maxheaderbytes":                           1 << 20,
		"stub.timeout.read":                             "5s",
		"stub.timeout.write":                            "10s",
		"stub.timeout.idle":                             "60s",
		"stub.timeout.readheader":                       "2s",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Client.String())
	b.WriteString(c.Guard.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Storage.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Stub.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.Client,
		&c.Guard,
		&c.Resilience,
		&c.Storage,
		&c.Log,
		&c.Telemetry,
		&c.Stub,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return nil
}
