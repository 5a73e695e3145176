package permission

import (
	"errors"

	"github.com/MrEthical07/gymdesk/jwt"
)

// ErrAccessDenied is returned when a decoded credential carries no console access.
var ErrAccessDenied = errors.New("access denied: administrator role required")

// RoleUser is the role asserted for ordinary gym members.
const RoleUser = "USER"

// Decision is the outcome of evaluating a policy against claims.
type Decision struct {
	Granted bool
	Role    string
}

// Policy decides whether decoded claims carry console access.
type Policy interface {
	Evaluate(claims *jwt.Claims) Decision
}

// PolicyFunc adapts a plain function to [Policy].
type PolicyFunc func(claims *jwt.Claims) Decision

// Evaluate calls f(claims).
func (f PolicyFunc) Evaluate(claims *jwt.Claims) Decision {
	return f(claims)
}

type excludePolicy struct {
	excluded map[string]struct{}
}

// ExcludeRoles returns a policy that grants access to any non-empty role not listed in
// roles. Every future role string the issuer invents is granted; use [AllowRoles] when that
// is not acceptable.
func ExcludeRoles(roles ...string) Policy {
	p := excludePolicy{excluded: make(map[string]struct{}, len(roles))}
	for _, r := range roles {
		p.excluded[r] = struct{}{}
	}
	return p
}

// DefaultPolicy is the console's policy: everyone except plain members.
func DefaultPolicy() Policy {
	return ExcludeRoles(RoleUser)
}

func (p excludePolicy) Evaluate(claims *jwt.Claims) Decision {
	if claims == nil || claims.Role == "" {
		return Decision{}
	}
	if _, denied := p.excluded[claims.Role]; denied {
		return Decision{Role: claims.Role}
	}
	return Decision{Granted: true, Role: claims.Role}
}

// AllowRoles returns a policy that grants access only to the given roles.
func AllowRoles(roles ...string) (Policy, error) {
	set := NewRoleSet()
	for _, r := range roles {
		if err := set.Register(r); err != nil {
			return nil, err
		}
	}
	set.Freeze()
	return set, nil
}
