package flowernursery

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/swarooprajana/flowernursery/identity"
	"github.com/swarooprajana/flowernursery/internal/stores"
)

// Builder defines a public type used by flowernursery APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	identity  IdentityService
	flowStore stores.FlowStore
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithIdentityService describes the withidentityservice operation and its observable behavior.
//
// WithIdentityService may return an error when input validation, dependency calls, or security checks fail.
// WithIdentityService does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithIdentityService(svc IdentityService) *Builder {
	b.identity = svc
	return b
}

// WithFlowStore describes the withflowstore operation and its observable behavior.
//
// WithFlowStore may return an error when input validation, dependency calls, or security checks fail.
// WithFlowStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithFlowStore(store stores.FlowStore) *Builder {
	b.flowStore = store
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc := b.identity
	if svc == nil {
		if cfg.Service.BaseURL == "" {
			return nil, errors.New("identity service or Service BaseURL required")
		}
		client, err := identity.NewClient(identity.Config{
			BaseURL: cfg.Service.BaseURL,
			Timeout: cfg.Service.Timeout,
		})
		if err != nil {
			return nil, err
		}
		svc = client
	}

	store := b.flowStore
	if store == nil {
		if b.redis != nil {
			store = stores.NewRedisFlowStore(b.redis, cfg.Flow.RedisPrefix)
		} else {
			store = stores.NewMemoryFlowStore()
		}
	}

	ctrl := &Controller{
		config:    cfg,
		identity:  svc,
		flowStore: store,
		metrics:   NewMetrics(cfg.Metrics),
	}

	if cfg.Audit.Enabled {
		ctrl.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	}

	b.built = true
	return ctrl, nil
}
