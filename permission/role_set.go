package permission

import (
	"errors"
	"sort"
	"sync"

	"github.com/MrEthical07/gymdesk/jwt"
)

// RoleSet is an allow-list of roles. It is mutable until [RoleSet.Freeze] is called and is
// itself a [Policy].
type RoleSet struct {
	mu     sync.RWMutex
	roles  map[string]struct{}
	frozen bool
}

var _ Policy = (*RoleSet)(nil)

// NewRoleSet returns an empty, unfrozen set.
func NewRoleSet() *RoleSet {
	return &RoleSet{roles: make(map[string]struct{})}
}

// Register adds roleName to the allow-list.
func (rs *RoleSet) Register(roleName string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.frozen {
		return errors.New("role set frozen")
	}
	if roleName == "" {
		return errors.New("role name empty")
	}
	if _, exists := rs.roles[roleName]; exists {
		return errors.New("role already registered")
	}

	rs.roles[roleName] = struct{}{}
	return nil
}

// Freeze rejects further registrations.
func (rs *RoleSet) Freeze() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.frozen = true
}

// Has reports whether roleName is allowed.
func (rs *RoleSet) Has(roleName string) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	_, ok := rs.roles[roleName]
	return ok
}

// Roles returns the allowed roles in sorted order.
func (rs *RoleSet) Roles() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make([]string, 0, len(rs.roles))
	for r := range rs.roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Evaluate grants access when the asserted role is registered.
func (rs *RoleSet) Evaluate(claims *jwt.Claims) Decision {
	if claims == nil || claims.Role == "" {
		return Decision{}
	}
	return Decision{Granted: rs.Has(claims.Role), Role: claims.Role}
}
