package gymdesk

import (
	"errors"

	"github.com/MrEthical07/gymdesk/permission"
)

var (
	// ErrAccessDenied is returned by Login when the credential's role has no console access.
	ErrAccessDenied = permission.ErrAccessDenied
	// ErrNotAuthenticated is returned by lookups that need an authenticated session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoGym is returned by CurrentGym when neither the claims nor storage name a gym.
	ErrNoGym = errors.New("no gym associated with session")
	// ErrEngineClosed is returned by operations issued after Close.
	ErrEngineClosed = errors.New("engine closed")
	// ErrStoreRequired is returned by Build when no storage backend was supplied.
	ErrStoreRequired = errors.New("credential store required")
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("builder already used")
)
