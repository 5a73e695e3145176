package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by Load and Gym when no live value exists.
	ErrNotFound = errors.New("storage: not found")
	// ErrUnavailable wraps backend I/O failures.
	ErrUnavailable = errors.New("storage: backend unavailable")
	// ErrInvalidTTL is returned by Save for non-positive lifetimes.
	ErrInvalidTTL = errors.New("storage: ttl must be > 0")
	// ErrEmptyValue is returned when saving an empty credential or gym id.
	ErrEmptyValue = errors.New("storage: empty value")
)

const (
	// DefaultTokenKey names the persisted credential.
	DefaultTokenKey = "userToken"
	// DefaultGymKey names the cached gym identifier.
	DefaultGymKey = "gymId"
	// DefaultPrefix namespaces every key written by the console.
	DefaultPrefix = "gd"
)

// Store persists the credential and the cached gym identifier.
type Store interface {
	// Save writes credential with an absolute expiry ttl from now.
	Save(ctx context.Context, credential string, ttl time.Duration) error
	// Load returns the credential, or ErrNotFound when missing or expired.
	Load(ctx context.Context) (string, error)
	// Clear removes both the credential and the cached gym identifier.
	Clear(ctx context.Context) error

	RememberGym(ctx context.Context, gymID string) error
	ForgetGym(ctx context.Context) error
	// Gym returns the cached gym identifier, or ErrNotFound.
	Gym(ctx context.Context) (string, error)
}

// Keys names the entries a backend writes for one origin.
type Keys struct {
	Prefix string
	Origin string
	Token  string
	Gym    string
}

// NewKeys returns the default key names for origin.
func NewKeys(origin string) Keys {
	return Keys{
		Prefix: DefaultPrefix,
		Origin: origin,
		Token:  DefaultTokenKey,
		Gym:    DefaultGymKey,
	}
}

func (k Keys) withDefaults() Keys {
	if k.Prefix == "" {
		k.Prefix = DefaultPrefix
	}
	if k.Origin == "" {
		k.Origin = "local"
	}
	if k.Token == "" {
		k.Token = DefaultTokenKey
	}
	if k.Gym == "" {
		k.Gym = DefaultGymKey
	}
	return k
}

func (k Keys) token() string {
	return k.Prefix + ":" + k.Origin + ":" + k.Token
}

func (k Keys) gym() string {
	return k.Prefix + ":" + k.Origin + ":" + k.Gym
}

// Origin reduces an API base URL to scheme://host, the scope credentials are bound to.
// Inputs that do not parse as absolute URLs are returned trimmed and lower-cased.
func Origin(baseURL string) string {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

func validateSave(credential string, ttl time.Duration) error {
	if credential == "" {
		return ErrEmptyValue
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return nil
}
