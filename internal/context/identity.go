package context

import (
	"context"
)

type contextKey string

const (
	CALLER_IDENTITY_KEY contextKey = "callerIdentity"
)

// SystemIdentity is recorded on rows written by background consumers
// (pendency processor, reconciliation ledger, sweep job) where no
// request caller exists.
const SystemIdentity = "system"

// GetCallerIdentity retrieves the opaque caller identity from the
// context. The identity originates in the external auth layer and is
// treated as pass-through data, never inspected.
func GetCallerIdentity(ctx context.Context) string {
	if identity, ok := ctx.Value(CALLER_IDENTITY_KEY).(string); ok && identity != "" {
		return identity
	}
	return SystemIdentity
}

// WithCallerIdentity adds an opaque caller identity to the context.
func WithCallerIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, CALLER_IDENTITY_KEY, identity)
}
