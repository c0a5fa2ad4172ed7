package http

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Oudwins/zog"
)

const (
	DefaultTimeoutSeconds  = 30
	DefaultMaxConnsPerHost = 6
	DefaultMaxRedirects    = 10
	DefaultUserAgent       = "addon-catalogue-aggregator-go"
)

// ClientConfig holds settings for the real HTTP client
type ClientConfig struct {
	TimeoutSeconds  int
	MaxConnsPerHost int
	FollowRedirects bool
	MaxRedirects    int
	UserAgent       string

	// Transport overrides the pooled transport, e.g. with a caching one.
	// MaxConnsPerHost is then the transport's concern.
	Transport http.RoundTripper
}

// DefaultClientConfig returns the catalogue fetch defaults. An empty user
// agent falls back to DefaultUserAgent.
func DefaultClientConfig(userAgent string) ClientConfig {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return ClientConfig{
		TimeoutSeconds:  DefaultTimeoutSeconds,
		MaxConnsPerHost: DefaultMaxConnsPerHost,
		FollowRedirects: true,
		MaxRedirects:    DefaultMaxRedirects,
		UserAgent:       userAgent,
	}
}

func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// zero values count as missing, hence Required on the numeric settings
var clientConfigSchema = zog.Struct(zog.Schema{
	"timeoutSeconds":  zog.Int().Required(zog.Message("timeout is required")).GTE(1, zog.Message("timeout must be at least one second")),
	"maxConnsPerHost": zog.Int().Required(zog.Message("connections per host is required")).GTE(1, zog.Message("connections per host must be a small positive number")).LTE(64, zog.Message("connections per host must be a small positive number")),
	"maxRedirects":    zog.Int().GTE(0, zog.Message("max redirects must not be negative")),
})

// ValidateClientConfig reports every invalid setting at once
func ValidateClientConfig(config ClientConfig) error {
	issues := clientConfigSchema.Validate(&config)
	if len(issues) == 0 {
		return nil
	}

	fields := make([]string, 0, len(issues))
	for field := range issues {
		if strings.HasPrefix(field, "$") {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Errorf("invalid http client config: %s", strings.Join(fields, ", "))
}
