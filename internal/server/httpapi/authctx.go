package httpapi

import (
	"context"

	"github.com/escolar/inventario/internal/model"
)

type ctxKey string

const userKey ctxKey = "inv.user"

// WithUser stores the authenticated account in context.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromCtx fetches the authenticated account from context.
func UserFromCtx(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}
