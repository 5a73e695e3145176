package gymdesk

import (
	"context"
	"errors"

	"github.com/MrEthical07/gymdesk/api"
	"github.com/MrEthical07/gymdesk/permission"
	"github.com/MrEthical07/gymdesk/storage"
)

const (
	fallbackName  = "User"
	fallbackEmail = "unavailable"
)

// Profile returns the signed-in operator. It asks the backend for /api/users/{id} and
// falls back to the credential's claims when the claims carry no id or the request fails.
func (e *Engine) Profile(ctx context.Context) (*Profile, error) {
	snap := e.Session()
	if snap.Authenticated != True || snap.Claims == nil {
		return nil, ErrNotAuthenticated
	}
	claims := snap.Claims

	if claims.SubjectID != "" {
		user, err := e.client.GetUser(ctx, claims.SubjectID)
		if err == nil {
			return &Profile{
				ID:     string(user.ID),
				Name:   user.Name,
				Email:  user.Email,
				Phone:  user.Phone,
				Role:   user.Role,
				Source: ProfileFromBackend,
			}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.countBackendError(err)
		e.logger.Warn().Err(err).Str("event", "profile").Msg("profile lookup failed, using claims")
	}

	profile := &Profile{
		ID:     claims.SubjectID,
		Name:   fallbackName,
		Email:  claims.Email,
		Role:   claims.Role,
		Source: ProfileFromClaims,
	}
	if profile.Email == "" {
		profile.Email = fallbackEmail
	}
	if profile.Role == "" {
		profile.Role = permission.RoleUser
	}
	return profile, nil
}

// CurrentGym fetches the gym the operator manages. The gym id comes from the claims,
// or from the id cached by a previous call. A successful lookup refreshes the cache.
func (e *Engine) CurrentGym(ctx context.Context) (*api.Gym, error) {
	snap := e.Session()
	if snap.Authenticated != True {
		return nil, ErrNotAuthenticated
	}

	gymID := snap.GymID()
	if gymID == "" {
		cached, err := e.store.Gym(ctx)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrNoGym
		case err != nil:
			return nil, err
		}
		gymID = cached
	}

	gym, err := e.client.GetGym(ctx, gymID)
	if err != nil {
		e.countBackendError(err)
		return nil, err
	}
	if gym.ID == "" {
		gym.ID = api.ID(gymID)
	}

	if err := e.store.RememberGym(ctx, gymID); err != nil {
		e.logger.Warn().Err(err).Str("event", "gym").Msg("caching gym id failed")
	}
	return gym, nil
}
