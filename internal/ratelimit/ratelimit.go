// Package ratelimit implements fixed-window request throttling with
// pluggable counter stores. Counter-store failures never reject traffic.
package ratelimit

import (
	"context"
	"time"

	"blood-sea-api/internal/common/config"
	"blood-sea-api/internal/common/logger"
	"blood-sea-api/internal/common/metrics"
)

// Policy is one fixed-window limit. Policies are independent: the same
// caller has a separate counter per policy name.
type Policy struct {
	Name        string
	Window      time.Duration
	MaxRequests int
}

// PoliciesFromConfig converts the configured policy map.
func PoliciesFromConfig(cfg map[string]config.RateLimitPolicy) map[string]Policy {
	out := make(map[string]Policy, len(cfg))
	for name, p := range cfg {
		out[name] = Policy{
			Name:        name,
			Window:      time.Duration(p.WindowMS) * time.Millisecond,
			MaxRequests: p.MaxRequests,
		}
	}
	return out
}

// Decision is the outcome of a limiter check. RetryAfter is only set on
// denial.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// CounterStore tracks per-key counts within fixed windows. Incr returns
// the count after incrementing and the remaining window lifetime.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// Limiter applies policies against a counter store.
type Limiter struct {
	store  CounterStore
	logger logger.Logger
}

func NewLimiter(store CounterStore, log logger.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "ratelimit"}),
	}
}

// Check records one request for callerKey under the policy and decides
// whether it may proceed. A store error allows the request: availability
// wins over strict enforcement here.
func (l *Limiter) Check(ctx context.Context, policy Policy, callerKey string) Decision {
	key := policy.Name + ":" + callerKey

	count, ttl, err := l.store.Incr(ctx, key, policy.Window)
	if err != nil {
		l.logger.Warn("counter store unavailable, allowing request", map[string]interface{}{
			"policy": policy.Name,
			"error":  err.Error(),
		})
		return Decision{Allowed: true, Remaining: policy.MaxRequests}
	}

	if count > int64(policy.MaxRequests) {
		metrics.RateLimitDenied.WithLabelValues(policy.Name).Inc()
		return Decision{Allowed: false, Remaining: 0, RetryAfter: ttl}
	}

	return Decision{
		Allowed:   true,
		Remaining: policy.MaxRequests - int(count),
	}
}
