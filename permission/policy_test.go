package permission

import (
	"testing"

	"github.com/MrEthical07/gymdesk/jwt"
)

func TestDefaultPolicyDeniesUser(t *testing.T) {
	d := DefaultPolicy().Evaluate(&jwt.Claims{Role: "USER"})
	if d.Granted {
		t.Fatal("USER must be denied")
	}
	if d.Role != "USER" {
		t.Fatalf("expected role to be echoed, got %q", d.Role)
	}
}

func TestDefaultPolicyGrantsEveryOtherRole(t *testing.T) {
	for _, role := range []string{"ADMIN", "TRAINER", "OWNER", "user", "USER ", "x"} {
		if !DefaultPolicy().Evaluate(&jwt.Claims{Role: role}).Granted {
			t.Fatalf("role %q should be granted", role)
		}
	}
}

func TestDefaultPolicyDeniesMissingRole(t *testing.T) {
	if DefaultPolicy().Evaluate(&jwt.Claims{}).Granted {
		t.Fatal("empty role must be denied")
	}
	if DefaultPolicy().Evaluate(nil).Granted {
		t.Fatal("nil claims must be denied")
	}
}

func TestAllowRoles(t *testing.T) {
	p, err := AllowRoles("ADMIN", "TRAINER")
	if err != nil {
		t.Fatalf("allow roles: %v", err)
	}

	cases := map[string]bool{"ADMIN": true, "TRAINER": true, "USER": false, "OWNER": false, "": false}
	for role, want := range cases {
		if got := p.Evaluate(&jwt.Claims{Role: role}).Granted; got != want {
			t.Fatalf("role %q: got %v want %v", role, got, want)
		}
	}
}

func TestAllowRolesRejectsDuplicatesAndEmpty(t *testing.T) {
	if _, err := AllowRoles("ADMIN", "ADMIN"); err == nil {
		t.Fatal("expected duplicate role to fail")
	}
	if _, err := AllowRoles(""); err == nil {
		t.Fatal("expected empty role to fail")
	}
}

func TestRoleSetFreeze(t *testing.T) {
	rs := NewRoleSet()
	if err := rs.Register("ADMIN"); err != nil {
		t.Fatalf("register: %v", err)
	}
	rs.Freeze()
	if err := rs.Register("TRAINER"); err == nil {
		t.Fatal("expected frozen set to reject registration")
	}
	if got := rs.Roles(); len(got) != 1 || got[0] != "ADMIN" {
		t.Fatalf("unexpected roles %v", got)
	}
}

func TestPolicyFunc(t *testing.T) {
	p := PolicyFunc(func(c *jwt.Claims) Decision {
		return Decision{Granted: c.GymID == "g1", Role: c.Role}
	})
	if !p.Evaluate(&jwt.Claims{GymID: "g1"}).Granted {
		t.Fatal("expected grant")
	}
}
