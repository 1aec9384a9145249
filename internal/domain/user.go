package domain

import (
	"context"
	"time"
)

// User is the authenticated actor of a request. Users are managed by the
// identity collaborator; the ledger only reads their id and role.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin can manage accounts and cards and approve rendiciones
	RoleAdmin Role = "admin"
	// RoleOperator can record movements, transfers and card activity
	RoleOperator Role = "operator"
	// RoleViewer can only read
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanCreate checks if the role can record ledger activity
func (r Role) CanCreate() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanManage checks if the role can manage accounts, cards and approvals
func (r Role) CanManage() bool {
	return r == RoleAdmin
}

type userContextKey struct{}

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from ctx.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok && user != nil
}

// ActorFromContext returns the id of the authenticated user or ErrMissingActor.
func ActorFromContext(ctx context.Context) (int64, error) {
	user, ok := UserFromContext(ctx)
	if !ok || user.ID <= 0 {
		return 0, ErrMissingActor
	}
	return user.ID, nil
}

// Authentication errors
var (
	ErrInvalidToken     = errUnauth("invalid token")
	ErrExpiredToken     = errUnauth("token has expired")
	ErrInsufficientRole = errUnauth("insufficient role for this operation")
)

func errUnauth(msg string) error {
	return &authError{msg: msg}
}

type authError struct{ msg string }

func (e *authError) Error() string { return e.msg }
func (e *authError) Unwrap() error { return ErrUnauthenticated }
