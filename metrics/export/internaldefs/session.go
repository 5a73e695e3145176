package internaldefs

import (
	"time"

	"github.com/MrEthical07/gymdesk"
)

// Session gauge names. These are exported even when engine metrics are disabled.
const (
	SessionStateName         = "gymdesk_session_state"
	SessionAuthenticatedName = "gymdesk_session_authenticated"
	SessionAdminName         = "gymdesk_session_admin"
	CredentialRemainingName  = "gymdesk_credential_remaining_seconds"
	SessionInfoName          = "gymdesk_session_info"
)

const (
	SessionStateHelp         = "Current session phase; exactly one state label is 1."
	SessionAuthenticatedHelp = "1 when authenticated, 0 when unauthenticated, -1 while unknown."
	SessionAdminHelp         = "1 when the session holds an administrator credential, 0 when not, -1 while unknown."
	CredentialRemainingHelp  = "Seconds until the bearer credential's exp claim; 0 when absent or past."
	SessionInfoHelp          = "Role and gym asserted by the current credential."
)

// SessionStates lists every state label, in rendering order.
var SessionStates = []gymdesk.State{
	gymdesk.StateUnknown,
	gymdesk.StateUnauthenticated,
	gymdesk.StateAuthenticated,
}

// SessionView is a [gymdesk.Session] reduced to exportable values.
type SessionView struct {
	State         gymdesk.State
	Authenticated int64
	Admin         int64
	Remaining     float64
	Role          string
	GymID         string
}

// ViewSession converts s into gauge values. The credential itself is never exposed.
func ViewSession(s gymdesk.Session, now time.Time) SessionView {
	v := SessionView{
		State:         s.State(),
		Authenticated: TriValue(s.Authenticated),
		Admin:         TriValue(s.IsAdmin),
	}
	if s.Authenticated != gymdesk.True {
		return v
	}
	v.Role = s.Role()
	v.GymID = s.GymID()
	if s.Claims != nil && s.Claims.ExpiresAt != nil {
		if left := s.Claims.ExpiresAt.Time.Sub(now); left > 0 {
			v.Remaining = left.Seconds()
		}
	}
	return v
}

// TriValue maps True to 1, False to 0 and Unknown to -1.
func TriValue(t gymdesk.Tri) int64 {
	switch t {
	case gymdesk.True:
		return 1
	case gymdesk.False:
		return 0
	default:
		return -1
	}
}

// StateValue reports 1 when state is the current one.
func (v SessionView) StateValue(state gymdesk.State) int64 {
	if v.State == state {
		return 1
	}
	return 0
}
