package flowernursery

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by flowernursery APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Service ServiceConfig
	Flow    FlowConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
SERVICE CONFIG
====================================
*/

// ServiceConfig defines a public type used by flowernursery APIs.
//
// ServiceConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ServiceConfig struct {
	// BaseURL of the remote identity service. Required unless a custom
	// IdentityService is supplied to the Builder.
	BaseURL string
	// Timeout bounds each identity call; a submission can never stay
	// in flight longer than this.
	Timeout time.Duration
}

/*
====================================
FLOW CONFIG
====================================
*/

// FlowConfig defines a public type used by flowernursery APIs.
//
// FlowConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FlowConfig struct {
	// TTL is the idle lifetime of a flow record; the flow resets to
	// anonymous when it lapses.
	TTL time.Duration
	// RedisPrefix namespaces flow keys when the Redis store is used.
	RedisPrefix string
}

// AuditConfig defines a public type used by flowernursery APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by flowernursery APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			Timeout: 15 * time.Second,
		},
		Flow: FlowConfig{
			TTL:         30 * time.Minute,
			RedisPrefix: "nf",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if c.Service.Timeout <= 0 {
		return errors.New("Service Timeout must be > 0")
	}

	if c.Flow.TTL <= 0 {
		return errors.New("Flow TTL must be > 0")
	}
	if strings.ContainsAny(c.Flow.RedisPrefix, " :") {
		return errors.New("Flow RedisPrefix must not contain spaces or colons")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}
