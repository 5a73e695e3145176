package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnverified is returned by [VerifyingDecoder] when a well-formed credential fails
// signature or registered-claim validation.
var ErrUnverified = errors.New("credential failed verification")

// SigningMethod selects the algorithm used to sign or verify credentials.
type SigningMethod string

const (
	// MethodEd25519 signs with EdDSA over Ed25519 keys.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with HMAC-SHA256 over a shared secret.
	MethodHS256 SigningMethod = "hs256"
)

// Config configures a [VerifyingDecoder] or a [Signer].
//
// For HS256, PrivateKey holds the shared secret and is used for both signing and
// verification. For Ed25519, PrivateKey signs and PublicKey (or VerifyKeys) verifies.
type Config struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte
}

// VerifyingDecoder is a [Decoder] that only accepts credentials signed by a known key.
type VerifyingDecoder struct {
	config Config
}

var _ Decoder = (*VerifyingDecoder)(nil)

// NewVerifyingDecoder validates cfg and returns a decoder that checks signatures, expiry,
// issuer and audience before returning claims.
func NewVerifyingDecoder(cfg Config) (*VerifyingDecoder, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if cfg.SigningMethod == MethodEd25519 && len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
		return nil, errors.New("ed25519 requires public key or verify key set")
	}
	return &VerifyingDecoder{config: cfg}, nil
}

// Decode parses and verifies credential. Structural failures wrap [ErrMalformed]; signature
// and claim failures wrap [ErrUnverified].
func (d *VerifyingDecoder) Decode(credential string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{methodFor(d.config.SigningMethod).Alg()}),
		jwt.WithPaddingAllowed(),
	}
	if d.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(d.config.Leeway))
	}
	if d.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(d.config.Issuer))
	}
	if d.config.Audience != "" {
		options = append(options, jwt.WithAudience(d.config.Audience))
	}

	claims := &Claims{}
	token, err := jwt.NewParser(options...).ParseWithClaims(credential, claims, d.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnverified, err)
	}
	if !token.Valid {
		return nil, ErrUnverified
	}

	normalizeClaims(claims)
	return claims, nil
}

func (d *VerifyingDecoder) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != methodFor(d.config.SigningMethod).Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}

	kid, _ := t.Header["kid"].(string)
	if len(d.config.VerifyKeys) > 0 {
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		key, ok := d.config.VerifyKeys[kid]
		if !ok {
			return nil, errors.New("unknown kid")
		}
		return verifyKey(d.config.SigningMethod, key)
	}
	if d.config.KeyID != "" && kid != d.config.KeyID {
		return nil, errors.New("unknown kid")
	}

	if d.config.SigningMethod == MethodHS256 {
		return d.config.PrivateKey, nil
	}
	return parseEdPublicKey(d.config.PublicKey)
}

// Signer mints credentials. The client never signs; Signer exists for test backends and
// tooling that stand in for the real issuer.
type Signer struct {
	config Config
}

// NewSigner validates cfg and returns a [Signer].
func NewSigner(cfg Config) (*Signer, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, errors.New("signer requires private key")
	}
	return &Signer{config: cfg}, nil
}

// Sign returns a signed credential carrying claims. A positive ttl sets the expiry; the
// issued-at time is always stamped.
func (s *Signer) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	if claims.Issuer == "" {
		claims.Issuer = s.config.Issuer
	}
	if s.config.Audience != "" && len(claims.Audience) == 0 {
		claims.Audience = jwt.ClaimStrings{s.config.Audience}
	}

	token := jwt.NewWithClaims(methodFor(s.config.SigningMethod), claims)
	if s.config.KeyID != "" {
		token.Header["kid"] = s.config.KeyID
	}

	var key interface{} = s.config.PrivateKey
	if s.config.SigningMethod == MethodEd25519 {
		edKey, err := parseEdPrivateKey(s.config.PrivateKey)
		if err != nil {
			return "", err
		}
		key = edKey
	}
	return token.SignedString(key)
}

func validateConfig(cfg *Config) error {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return errors.New("invalid leeway configuration")
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return err
			}
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return err
			}
		}
		for kid, key := range cfg.VerifyKeys {
			if strings.TrimSpace(kid) == "" {
				return errors.New("verify key map contains empty kid")
			}
			if _, err := parseEdPublicKey(key); err != nil {
				return fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
			}
		}
	default:
		return errors.New("unsupported signing method")
	}

	if cfg.KeyID != "" && len(cfg.VerifyKeys) > 0 {
		if _, ok := cfg.VerifyKeys[cfg.KeyID]; !ok {
			return errors.New("KeyID is not present in VerifyKeys")
		}
	}
	return nil
}

func methodFor(m SigningMethod) jwt.SigningMethod {
	if m == MethodHS256 {
		return jwt.SigningMethodHS256
	}
	return jwt.SigningMethodEdDSA
}

func verifyKey(m SigningMethod, key []byte) (interface{}, error) {
	if m == MethodHS256 {
		return key, nil
	}
	return parseEdPublicKey(key)
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
