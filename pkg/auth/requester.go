package auth

import (
	"context"

	"ridebook/pkg/models"
)

// Requester identifies the caller of a request. ProfileID is the driver or customer
// row id and stays empty for admins.
type Requester struct {
	UserID    string
	Email     string
	Role      models.Role
	ProfileID string
}

func (r Requester) IsAdmin() bool { return r.Role == models.RoleAdmin }

type requesterKey struct{}

func WithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

func RequesterFrom(ctx context.Context) (Requester, bool) {
	r, ok := ctx.Value(requesterKey{}).(Requester)
	return r, ok
}
