package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/carhire-backend/api/responses"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
)

// FixedWindowStore counts requests per scope in fixed windows.
type FixedWindowStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// TenantRateLimitPolicy throttles one traffic surface per tenant.
type TenantRateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int
}

// NewTenantRateLimitPolicy builds a policy with the supplied window and limit.
func NewTenantRateLimitPolicy(name string, window time.Duration, limit int) TenantRateLimitPolicy {
	return TenantRateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		window: window,
		limit:  limit,
	}
}

func (p TenantRateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

func (p TenantRateLimitPolicy) scope(tenant string) string {
	name := p.name
	if name == "" {
		name = "default"
	}
	return "tenant:" + name + ":" + tenant
}

// TenantRateLimit counts requests per tenant in fixed windows. A failing
// counter store lets the request through; throttling is best effort.
func TenantRateLimit(policy TenantRateLimitPolicy, store FixedWindowStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tenantID, ok := TenantIDFromContext(ctx)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(tenantID.String()), int64(policy.limit), policy.window)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy": policy.name,
						"error":  err.Error(),
					}), "rate limit store unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         policy.name,
						"attempts":       count,
						"limit":          policy.limit,
						"window_seconds": int(policy.window.Seconds()),
					}), "rate limit exceeded")
				}
				w.Header().Set("Retry-After", retryAfter(policy.window))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
