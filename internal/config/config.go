package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string `envconfig:"APP_PORT" default:"3000"`
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	APIBaseURL   string        `envconfig:"API_BASE_URL" default:"http://localhost:8000"`
	APITimeout   time.Duration `envconfig:"API_TIMEOUT" default:"30s"`  // 0 disables the client timeout
	APIRateLimit float64       `envconfig:"API_RATE_LIMIT" default:"0"` // requests/second, 0 = unpaced
	APIRateBurst int           `envconfig:"API_RATE_BURST" default:"10"`

	NotificationSync bool `envconfig:"NOTIFICATION_SYNC" default:"false"`

	SessionCookieName string        `envconfig:"SESSION_COOKIE_NAME" default:"eventease_tab"`
	SessionIdleTTL    time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	TokenExpirySkew   time.Duration `envconfig:"TOKEN_EXPIRY_SKEW" default:"30s"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"` // CORS allowed origins, credentials included
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`                                 // IPs/CIDRs whose X-Forwarded-For is honored

	TicketQRPresign bool          `envconfig:"TICKET_QR_PRESIGN" default:"false"`
	TicketQRURLTTL  time.Duration `envconfig:"TICKET_QR_URL_TTL" default:"15m"`
	AWSRegion       string        `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSEndpointURL  string        `envconfig:"AWS_ENDPOINT_URL"` // empty in prod, LocalStack URL in dev
	AWSAccessKeyID  string        `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey    string        `envconfig:"AWS_SECRET_ACCESS_KEY"`
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return &cfg, nil
}

// IsProduction returns true when the portal runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q must be an absolute URL", c.APIBaseURL)
	}
	if c.APITimeout < 0 {
		return errors.New("API_TIMEOUT must not be negative")
	}
	if c.APIRateLimit < 0 || c.APIRateBurst < 1 {
		return errors.New("API_RATE_LIMIT must be >= 0 and API_RATE_BURST >= 1")
	}
	if c.SessionIdleTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL must be positive")
	}
	if c.SessionCookieName == "" {
		return errors.New("SESSION_COOKIE_NAME must be set")
	}
	for _, o := range c.AllowedOrigins {
		if strings.TrimSpace(o) == "*" {
			return errors.New("ALLOWED_ORIGINS must list explicit origins; credentials are allowed")
		}
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// TrustedProxyPrefixes parses TRUSTED_PROXIES. Bare addresses become
// single-host prefixes.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", raw)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}
