package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxTenantID contextKey = "tenant_id"

// TenantIDFromContext returns the tenant the request is scoped to, or
// uuid.Nil when the auth middleware has not run.
func TenantIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxTenantID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// WithTenantID injects the tenant identifier into the context.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenantID, tenantID)
}
