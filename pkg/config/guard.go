package config

import (
	"fmt"
	"strings"
	"time"
)

// GuardConfig tunes the client-side action guards.
type GuardConfig struct {
	Throttle    time.Duration `koanf:"throttle"`
	Debounce    time.Duration `koanf:"debounce"`
	SearchLimit int           `koanf:"searchlimit"`
}

// DefaultGuardConfig mirrors the storefront's historical timings.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Throttle:    300 * time.Millisecond,
		Debounce:    300 * time.Millisecond,
		SearchLimit: 8,
	}
}

// String returns a string representation of the guard configuration.
func (c *GuardConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Guard ---\n")
	b.WriteString(fmt.Sprintf("  throttle: %s\n", c.Throttle))
	b.WriteString(fmt.Sprintf("  debounce: %s\n", c.Debounce))
	b.WriteString(fmt.Sprintf("  searchlimit: %d\n", c.SearchLimit))
	return b.String()
}

func (c *GuardConfig) Validate() error {
	if c.Throttle < 0 {
		return fmt.Errorf("guard.throttle must not be negative")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("guard.debounce must not be negative")
	}
	if c.SearchLimit <= 0 || c.SearchLimit > 50 {
		return fmt.Errorf("guard.searchlimit must be between 1 and 50")
	}
	return nil
}
