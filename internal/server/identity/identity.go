// Package identity carries authentication state through a request's
// context.Context: the decoded token claims, the resolved user, and an
// explicit Identity value for routes where authentication is optional.
package identity

import (
	"context"

	"github.com/dmitrijs2005/scorekeeper/internal/server/auth"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
)

type ctxKey string

const (
	claimsKey   ctxKey = "claims"
	identityKey ctxKey = "identity"
	requestKey  ctxKey = "requestID"
)

// Identity is either anonymous or an authenticated user. The zero value is
// anonymous.
type Identity struct {
	user *models.User
}

// Anonymous returns the identity of a caller that presented no token.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns the identity of a resolved user.
func Authenticated(u *models.User) Identity {
	return Identity{user: u}
}

// User returns the user and true for an authenticated identity.
func (i Identity) User() (*models.User, bool) {
	return i.user, i.user != nil
}

// IsAnonymous reports whether no user is attached.
func (i Identity) IsAnonymous() bool {
	return i.user == nil
}

// WithClaims attaches decoded claims. A nil pointer records that the
// request carried no token at all.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFrom returns the claims attached by WithClaims.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// WithIdentity attaches the caller's identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// From returns the identity attached to ctx, or Anonymous when none was.
func From(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

// UserFrom is shorthand for From(ctx).User().
func UserFrom(ctx context.Context) (*models.User, bool) {
	return From(ctx).User()
}

// WithRequestID attaches the per-request id used in log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey, id)
}

// RequestIDFrom returns the request id or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestKey).(string)
	return id
}
