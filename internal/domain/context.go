package domain

import "context"

// Ключ для хранения аутентифицированного субъекта в контексте HTTP-запроса
type ctxKey int

const principalCtxKey ctxKey = 1

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	return p, ok
}
