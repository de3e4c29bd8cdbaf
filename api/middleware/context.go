package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	pkgerrors "github.com/harborpoint/billing-backend/pkg/errors"
)

type contextKey string

const ctxUser contextKey = "auth_user"

// AuthenticatedUser is the verified identity seeded by the Auth middleware.
type AuthenticatedUser struct {
	ID    uuid.UUID
	Email string
}

// UserFromRequest returns the authenticated user seeded by Auth.
func UserFromRequest(r *http.Request) (AuthenticatedUser, error) {
	return userFromContext(r.Context())
}

func userFromContext(ctx context.Context) (AuthenticatedUser, error) {
	user, ok := ctx.Value(ctxUser).(AuthenticatedUser)
	if !ok || user.ID == uuid.Nil {
		return AuthenticatedUser{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return user, nil
}

// WithUser injects the authenticated user into the context.
func WithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, ctxUser, user)
}
