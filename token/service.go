// Package token issues and validates the opaque session tokens carried by
// the auth cookie.
//
// A token is a JSON claims payload (username + expiry) sealed with
// XChaCha20-Poly1305 under one process-wide symmetric key. The AEAD gives
// confidentiality and integrity in one primitive: the claims are the sole
// basis of trust, so any tampering must be detectable. The server keeps no
// session table — validity is entirely the cryptographic envelope plus the
// expiry check. Losing or rotating the key invalidates every outstanding
// session.
package token

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrMalformed is returned for any token that fails decoding, decryption,
	// integrity verification, or claims validation.
	ErrMalformed = errors.New("malformed session token")
	// ErrExpired is returned for a well-formed token past its expiry.
	ErrExpired = errors.New("session token expired")
)

// tokenPrefix versions the envelope format so the scheme can evolve without
// breaking outstanding cookies.
const tokenPrefix = "v1."

// DefaultTTL is the session validity window.
const DefaultTTL = 7 * 24 * time.Hour

// Config holds the token service parameters. Key must be exactly 32 bytes
// and is loaded once at startup; rotation is out of scope.
type Config struct {
	Key []byte
	TTL time.Duration
}

// Claims is the payload sealed inside a session token. RegisteredClaims
// supplies the standard exp/iat NumericDate encoding; Username is the only
// identity claim and is required.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and validates session tokens. Safe for concurrent use
// after construction.
type Service struct {
	aead cipher.AEAD
	ttl  time.Duration
	now  func() time.Time
}

// NewService validates the configuration and returns a token service.
func NewService(cfg Config) (*Service, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if len(cfg.Key) != chacha20poly1305.KeySize {
		return nil, errors.New("session key must be exactly 32 bytes")
	}

	aead, err := chacha20poly1305.NewX(cfg.Key)
	if err != nil {
		return nil, err
	}

	return &Service{
		aead: aead,
		ttl:  cfg.TTL,
		now:  time.Now,
	}, nil
}

// TTL reports the configured validity window.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue seals a claims set for username expiring at now + TTL. The returned
// string is opaque to clients and URL/cookie safe.
func (s *Service) Issue(username string) (string, error) {
	if username == "" {
		return "", errors.New("username required")
	}

	now := s.now().UTC()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := s.aead.Seal(nonce, nonce, payload, nil)

	return tokenPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Validate opens the token and returns the username claim.
//
// Any decoding, decryption, or claims-shape failure — including a missing
// username — is ErrMalformed; a valid envelope past its expiry is
// ErrExpired. Crypto and serialization failures never panic. The absence
// of a token is the caller's "anonymous" state and never reaches Validate.
func (s *Service) Validate(tokenStr string) (string, error) {
	raw, ok := strings.CutPrefix(tokenStr, tokenPrefix)
	if !ok {
		return "", ErrMalformed
	}

	sealed, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrMalformed
	}
	if len(sealed) < s.aead.NonceSize() {
		return "", ErrMalformed
	}

	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	payload, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrMalformed
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", ErrMalformed
	}
	if claims.Username == "" {
		return "", ErrMalformed
	}
	if claims.ExpiresAt == nil {
		return "", ErrMalformed
	}
	if !claims.ExpiresAt.Time.After(s.now()) {
		return "", ErrExpired
	}

	return claims.Username, nil
}
