package identity

import (
	"context"

	"gitlab.com/discrescue/admin/internal/access"
)

type Principal struct {
	Subject string
	Email   string
	Caller  access.Caller
}

// Name is how the principal is recorded in audit trails.
func (p Principal) Name() string {
	if p.Email != "" {
		return p.Email
	}
	return p.Subject
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal resolved for the request, or an
// anonymous one.
func FromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}
