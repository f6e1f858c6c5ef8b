package config

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/jonwraymond/odoogate/observe"
	"github.com/jonwraymond/odoogate/odoorpc"
	"github.com/jonwraymond/odoogate/pool"
	"github.com/jonwraymond/odoogate/secret"
	"github.com/jonwraymond/odoogate/token"
)

// envPrefix is prepended to every variable name below.
const envPrefix = "ODOOGATE"

// Config is the gateway's process configuration.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":3000"`

	// EncryptionKey seals and opens credential tokens. Required; accepts a
	// secretref. Its value never appears in logs or errors.
	EncryptionKey string `envconfig:"ENCRYPTION_KEY" required:"true"`

	// PoolTTL is the session pool entry lifetime.
	PoolTTL time.Duration `envconfig:"POOL_TTL" default:"60m"`

	// PoolSweepInterval is how often expired sessions are swept. Negative
	// disables the sweeper; expiry is still enforced on acquire.
	PoolSweepInterval time.Duration `envconfig:"POOL_SWEEP_INTERVAL" default:"1m"`

	// AuthTimeout bounds one upstream authentication.
	AuthTimeout time.Duration `envconfig:"AUTH_TIMEOUT" default:"30s"`

	// CallTimeout bounds one upstream RPC dispatch.
	CallTimeout time.Duration `envconfig:"CALL_TIMEOUT" default:"60s"`

	// ShutdownGrace is how long in-flight requests get to finish on SIGTERM.
	ShutdownGrace time.Duration `envconfig:"SHUTDOWN_GRACE" default:"5s"`

	// ServiceName labels telemetry and health output.
	ServiceName string `envconfig:"SERVICE_NAME" default:"odoogate"`

	// Version labels telemetry; normally injected at build time.
	Version string `envconfig:"VERSION" default:"dev"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// TraceExporter is one of otlp, jaeger, stdout, none.
	TraceExporter string `envconfig:"TRACE_EXPORTER" default:"none"`

	// TraceSamplePct is the trace sampling ratio in [0.0, 1.0].
	TraceSamplePct float64 `envconfig:"TRACE_SAMPLE_PCT" default:"1.0"`

	// MetricExporter is one of otlp, prometheus, stdout, none.
	MetricExporter string `envconfig:"METRIC_EXPORTER" default:"none"`
}

// Load reads the environment, resolves the encryption key through the secret
// layer, and validates the result. It is the only constructor; a *Config in
// hand has already passed validation.
func Load(ctx context.Context) (*Config, error) {
	var c Config
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	key, err := secret.NewDefaultResolver().ResolveValue(ctx, c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("config: resolve encryption key: %w", err)
	}
	c.EncryptionKey = key

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field values. Load calls it; it is exported for tests and
// for configurations built by hand.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return ErrMissingListenAddr
	}
	if len(c.EncryptionKey) < token.MinSecretLen {
		return fmt.Errorf("%w: need at least %d bytes", ErrKeyTooShort, token.MinSecretLen)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"POOL_TTL", c.PoolTTL},
		{"AUTH_TIMEOUT", c.AuthTimeout},
		{"CALL_TIMEOUT", c.CallTimeout},
		{"SHUTDOWN_GRACE", c.ShutdownGrace},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s_%s", ErrInvalidDuration, envPrefix, d.name)
		}
	}

	obs := c.Observe()
	return obs.Validate()
}

// Observe maps the configuration onto the telemetry stack.
func (c *Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     c.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TraceExporter != "" && c.TraceExporter != "none",
			Exporter:  c.TraceExporter,
			SamplePct: c.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricExporter != "" && c.MetricExporter != "none",
			Exporter: c.MetricExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
		},
	}
}

// Pool maps the configuration onto the session pool.
func (c *Config) Pool() pool.Config {
	return pool.Config{
		TTL:           c.PoolTTL,
		AuthTimeout:   c.AuthTimeout,
		SweepInterval: c.PoolSweepInterval,
	}
}

// Dialer maps the configuration onto the upstream RPC dialer.
func (c *Config) Dialer() odoorpc.Config {
	return odoorpc.Config{
		AuthTimeout: c.AuthTimeout,
		CallTimeout: c.CallTimeout,
	}
}

// Summary returns the loggable view of the configuration. The encryption key
// is reported only by length.
func (c *Config) Summary() map[string]any {
	return map[string]any{
		"listen_addr":         c.ListenAddr,
		"encryption_key_len":  len(c.EncryptionKey),
		"pool_ttl":            c.PoolTTL.String(),
		"pool_sweep_interval": c.PoolSweepInterval.String(),
		"auth_timeout":        c.AuthTimeout.String(),
		"call_timeout":        c.CallTimeout.String(),
		"shutdown_grace":      c.ShutdownGrace.String(),
		"service_name":        c.ServiceName,
		"version":             c.Version,
		"log_level":           c.LogLevel,
		"trace_exporter":      c.TraceExporter,
		"metric_exporter":     c.MetricExporter,
	}
}
