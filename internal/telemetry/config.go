package telemetry

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envEndpoint    = "YORLANG_OTEL_ENDPOINT"
	envInsecure    = "YORLANG_OTEL_INSECURE"
	envService     = "YORLANG_OTEL_SERVICE"
	envDialTimeout = "YORLANG_OTEL_DIAL_TIMEOUT"
	envHeaders     = "YORLANG_OTEL_HEADERS"

	DefaultServiceName = "yorlang"
)

// Config selects the OTLP collector spans are exported to. An empty
// endpoint disables export.
type Config struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	Version     string
	DialTimeout time.Duration
	Headers     map[string]string
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ConfigFromEnv reads the YORLANG_OTEL_* variables through getenv, or
// os.Getenv when getenv is nil. Malformed values are ignored.
func ConfigFromEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Config{
		Endpoint:    strings.TrimSpace(getenv(envEndpoint)),
		ServiceName: strings.TrimSpace(getenv(envService)),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	if v := strings.TrimSpace(getenv(envInsecure)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Insecure = b
		}
	}
	if v := strings.TrimSpace(getenv(envDialTimeout)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DialTimeout = d
		}
	}
	if headers, err := ParseHeaders(getenv(envHeaders)); err == nil {
		cfg.Headers = headers
	}
	return cfg
}

// ParseHeaders parses "k=v, k2=v2". A blank input yields nil.
func ParseHeaders(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q", part)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
