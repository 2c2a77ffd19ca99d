package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ClientConfig holds the settings of the storefront API client.
type ClientConfig struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the API client configuration.
func (c *ClientConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- API Client ---\n")
	b.WriteString(fmt.Sprintf("  baseurl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("API base URL is not configured")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %s", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API base URL must use http or https: %s", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("API client timeout must be greater than 0")
	}
	return nil
}
