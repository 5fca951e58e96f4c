package graph

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/server/identity"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/services"
	graphql "github.com/graph-gophers/graphql-go"
)

// Errors surfaced to GraphQL clients. Causes stay in the server log.
var (
	errUnauthorized = errors.New("Unauthorized")
	errLogin        = errors.New("Unable to login")
	errInternal     = errors.New("Internal server error")
)

// UserService is the part of services.UserService the resolvers need.
type UserService interface {
	Login(ctx context.Context, userName, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, user *models.User) error
	Search(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
}

type Resolver struct {
	users UserService
}

func NewResolver(users UserService) *Resolver {
	return &Resolver{users: users}
}

func (r *Resolver) Me(ctx context.Context) *userResolver {
	u, ok := identity.UserFrom(ctx)
	if !ok {
		return nil
	}
	return &userResolver{u: u}
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	if _, ok := identity.UserFrom(ctx); !ok {
		return nil, errUnauthorized
	}

	found, err := r.users.Search(ctx, models.UserFilter{})
	if err != nil {
		return nil, errInternal
	}

	out := make([]*userResolver, 0, len(found))
	for _, u := range found {
		out = append(out, &userResolver{u: u})
	}
	return out, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ Username string }) (*userResolver, error) {
	if _, ok := identity.UserFrom(ctx); !ok {
		return nil, errUnauthorized
	}

	found, err := r.users.Search(ctx, models.UserFilter{UserName: args.Username})
	if err != nil {
		return nil, errInternal
	}
	if len(found) != 1 {
		return nil, nil
	}
	return &userResolver{u: found[0]}, nil
}

type LoginInput struct {
	Username string
	Password string
}

func (r *Resolver) Login(ctx context.Context, args struct{ Payload LoginInput }) (*loginResolver, error) {
	res, err := r.users.Login(ctx, args.Payload.Username, args.Payload.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, errLogin
		}
		return nil, errInternal
	}
	return &loginResolver{res: res}, nil
}

func (r *Resolver) Logout(ctx context.Context) (*logoutResolver, error) {
	u, ok := identity.UserFrom(ctx)
	if !ok {
		return nil, errUnauthorized
	}
	if err := r.users.Logout(ctx, u); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, errUnauthorized
		}
		return nil, errInternal
	}
	return &logoutResolver{message: "User: " + u.UserName + " logged out"}, nil
}

type userResolver struct {
	u *models.User
}

func (r *userResolver) ID() graphql.ID    { return graphql.ID(r.u.ID) }
func (r *userResolver) Username() string  { return r.u.UserName }
func (r *userResolver) Email() string     { return r.u.Email }
func (r *userResolver) Roles() []string   { return r.u.RoleNames() }
func (r *userResolver) CreatedAt() string { return r.u.CreatedAt.Format(time.RFC3339) }
func (r *userResolver) UpdatedAt() string { return r.u.UpdatedAt.Format(time.RFC3339) }

type loginResolver struct {
	res *services.LoginResult
}

func (r *loginResolver) ID() graphql.ID      { return graphql.ID(r.res.ID) }
func (r *loginResolver) Username() string    { return r.res.UserName }
func (r *loginResolver) Email() string       { return r.res.Email }
func (r *loginResolver) Roles() []string     { return r.res.Roles }
func (r *loginResolver) AccessToken() string { return r.res.AccessToken }

type logoutResolver struct {
	message string
}

func (r *logoutResolver) Message() string { return r.message }
