package handler

import (
	"context"
	"net/http"

	"github.com/okenov/recensio/data"
)

// contextKey is a private key type so the user entry cannot collide with
// context values set by other packages.
type contextKey string

const userContextKey = contextKey("user")

// contextSetUser returns a copy of the request carrying user in its context.
// The authenticate middleware stores either the real user or AnonymousUser,
// so every handler downstream can rely on the value being present.
func (h *Handler) contextSetUser(r *http.Request, user *data.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser pulls the user out of the request context. A missing value
// means a route bypassed the authenticate middleware, which is a programmer
// error, so it panics rather than returning one.
func (h *Handler) contextGetUser(r *http.Request) *data.User {
	user, ok := r.Context().Value(userContextKey).(*data.User)
	if !ok {
		panic("missing user value in request context")
	}
	return user
}
