package httpapi

import (
	"context"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
)

type contextKey string

const principalContextKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p userprofile.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (userprofile.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(userprofile.Principal)
	return p, ok
}
