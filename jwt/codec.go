package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when a credential cannot be parsed into claims.
var ErrMalformed = errors.New("malformed credential")

// Claims is the decoded payload of a credential. Role and GymID are trusted as asserted by
// the issuer.
type Claims struct {
	SubjectID string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	GymID     string `json:"gymId,omitempty"`
	jwt.RegisteredClaims
}

// Decoder turns a raw credential into claims.
type Decoder interface {
	Decode(credential string) (*Claims, error)
}

// UnverifiedDecoder decodes the payload segment of a credential without checking its
// signature. The zero value is ready to use.
type UnverifiedDecoder struct{}

var _ Decoder = UnverifiedDecoder{}

// NewUnverifiedDecoder returns the payload-only decoder.
func NewUnverifiedDecoder() UnverifiedDecoder {
	return UnverifiedDecoder{}
}

// Decode splits credential into header, payload and signature segments and parses the
// payload. Every failure wraps [ErrMalformed].
func (UnverifiedDecoder) Decode(credential string) (*Claims, error) {
	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformed, len(parts))
	}

	payload, err := jwt.NewParser(jwt.WithPaddingAllowed()).DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not base64url: %v", ErrMalformed, err)
	}

	return unmarshalClaims(payload)
}

func unmarshalClaims(payload []byte) (*Claims, error) {
	// a bare JSON null would leave the struct untouched and pass as empty claims
	trimmed := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformed)
	}

	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("%w: payload is not valid JSON: %v", ErrMalformed, err)
	}
	normalizeClaims(claims)
	return claims, nil
}

func normalizeClaims(claims *Claims) {
	if claims.SubjectID == "" {
		claims.SubjectID = claims.Subject
	}
}
