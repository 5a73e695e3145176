package gymdesk

import (
	"github.com/MrEthical07/gymdesk/jwt"
)

// Tri is a three-valued flag. The zero value is Unknown.
type Tri uint8

const (
	Unknown Tri = iota
	True
	False
)

func (t Tri) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// State names the phase a [Session] is in.
type State string

const (
	StateUnknown         State = "unknown"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// Session is an immutable snapshot of the console session.
//
// Credential is non-empty only when Authenticated is True, and Authenticated is True only
// when IsAdmin is True. Claims are the decoded claims of Credential, or nil.
type Session struct {
	Credential    string
	Authenticated Tri
	IsAdmin       Tri
	Claims        *jwt.Claims
}

func unauthenticatedSession() Session {
	return Session{Authenticated: False, IsAdmin: False}
}

func authenticatedSession(credential string, claims *jwt.Claims) Session {
	return Session{
		Credential:    credential,
		Authenticated: True,
		IsAdmin:       True,
		Claims:        claims,
	}
}

// State classifies the snapshot.
func (s Session) State() State {
	switch s.Authenticated {
	case True:
		return StateAuthenticated
	case False:
		return StateUnauthenticated
	default:
		return StateUnknown
	}
}

// BearerCredential returns the credential to attach to requests and whether one applies.
func (s Session) BearerCredential() (string, bool) {
	if s.Authenticated != True || s.Credential == "" {
		return "", false
	}
	return s.Credential, true
}

// Role returns the role claim, or "".
func (s Session) Role() string {
	if s.Claims == nil {
		return ""
	}
	return s.Claims.Role
}

// GymID returns the gym claim, or "".
func (s Session) GymID() string {
	if s.Claims == nil {
		return ""
	}
	return s.Claims.GymID
}

// LoginResult is returned by a successful [Engine.Login].
type LoginResult struct {
	Session Session
	// Payload is the full login response body.
	Payload map[string]any
	// Persisted is false when the credential could not be written to storage. The session
	// is still authenticated for the life of the process.
	Persisted bool
}

// ProfileSource tells where a [Profile] came from.
type ProfileSource string

const (
	ProfileFromBackend ProfileSource = "backend"
	ProfileFromClaims  ProfileSource = "claims"
)

// Profile is the signed-in operator as shown by the console.
type Profile struct {
	ID     string
	Name   string
	Email  string
	Phone  string
	Role   string
	Source ProfileSource
}
