package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/leave-management/internal/core/identity"
)

type ctxKey string

const ContextPrincipalKey ctxKey = "principal"

func PrincipalFromContext(ctx context.Context) (identity.Principal, bool) {
	if ctx == nil {
		return identity.Principal{}, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(identity.Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p identity.Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
