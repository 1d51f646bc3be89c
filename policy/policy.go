// Package policy holds the access-control decisions shared by every domain
// service: pure functions over the caller's identity and the resource owner,
// with no I/O.
package policy

import "context"

// Role names used by the access checks. The roles table permits arbitrary
// names, but only these two carry meaning.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Principal is the authenticated caller for the duration of one request.
// The transport layer builds it from a validated token and passes it
// explicitly into every service operation.
type Principal struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the role grants admin privilege.
func IsAdmin(role string) bool { return role == RoleAdmin }

// OwnsOrAdmin reports whether the caller may act on a resource owned by
// ownerID. Owner id 0 means the resource has no owner (an unassigned task)
// and matches no caller: user ids start at 1, and the only id-0 principal is
// the system token, which passes on the admin branch.
func OwnsOrAdmin(p Principal, ownerID int64) bool {
	return IsAdmin(p.Role) || (ownerID != 0 && p.UserID == ownerID)
}

// CanChangeRestrictedField reports whether the role may mutate a restricted
// field: task status, task assignee, or a user's role.
func CanChangeRestrictedField(role string) bool { return IsAdmin(role) }

// CanChangeRole reports whether the caller may change the role of the user
// with targetID. Admins may change anyone's role except their own; the
// self carve-out is not admin-exempt.
func CanChangeRole(p Principal, targetID int64) bool {
	return IsAdmin(p.Role) && p.UserID != targetID
}

type contextKey int

const ctxKeyPrincipal contextKey = 0

// ContextWithPrincipal returns a context carrying the principal.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext extracts the principal set by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}
