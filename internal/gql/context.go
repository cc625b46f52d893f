package gql

import (
	"context"

	"starwars/internal/auth"
	apperrors "starwars/internal/errors"
)

type identityKey struct{}

// identity is the outcome of verifying the request's bearer token.
type identity struct {
	claims *auth.Claims
	token  string
	err    error
}

// WithIdentity attaches a verification outcome to ctx. A non-nil err marks
// the request anonymous while remembering why verification failed.
func WithIdentity(ctx context.Context, claims *auth.Claims, token string, err error) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{claims: claims, token: token, err: err})
}

func identityFrom(ctx context.Context) identity {
	id, _ := ctx.Value(identityKey{}).(identity)
	return id
}

// requireAuth returns the caller's claims, or the reason they are anonymous.
func requireAuth(ctx context.Context) (*auth.Claims, string, error) {
	id := identityFrom(ctx)
	if id.claims != nil {
		return id.claims, id.token, nil
	}
	if id.err != nil {
		return nil, "", id.err
	}
	return nil, "", apperrors.ErrTokenMissing
}
