package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for token labels and reset tokens
	"encoding/hex"  // hex encoding functions
	"errors"
	"fmt"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// BearerToken represents a signed bearer credential along with the
// database row that backs it. The Token field is the serialized JWT
// handed to the client; ID is the access_tokens row carried in the
// `jti` claim. The row is what makes the token revocable: middleware
// rejects any request whose row is revoked or gone, so a stolen JWT
// dies with its session.
type BearerToken struct {
	ID    uint64    // access_tokens.id, embedded as jti
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenClaims is the validated content of a presented bearer token.
type TokenClaims struct {
	UserID  uint64
	TokenID uint64
}

var errInvalidToken = errors.New("invalid token")

// SignBearerToken builds and signs an HS256 JWT binding a user to an
// access_tokens row. Claims: sub (user id), jti (token row id), iat and
// exp. The expiry here mirrors the row's expires_at; the row remains
// authoritative.
func SignBearerToken(secret string, userID, tokenID uint64, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": tokenID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseBearerToken verifies the signature and expiry of a presented
// token and extracts its subject and token-row id. Only HMAC-signed
// tokens are accepted.
func ParseBearerToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return TokenClaims{}, errInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, errInvalidToken
	}
	sub, ok := numericClaim(claims["sub"])
	if !ok {
		return TokenClaims{}, errInvalidToken
	}
	jti, ok := numericClaim(claims["jti"])
	if !ok {
		return TokenClaims{}, errInvalidToken
	}
	return TokenClaims{UserID: sub, TokenID: jti}, nil
}

// numericClaim converts a decoded JWT claim to uint64. JSON numbers
// arrive as float64.
func numericClaim(v interface{}) (uint64, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f), true
}

// TokenLabel derives the name column for a new token row from the app
// name and the current timestamp. It is a label only; none of the
// token's entropy comes from it.
func TokenLabel(appName string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s%d", appName, time.Now().UTC().UnixNano())))
	return hex.EncodeToString(sum[:])
}

// NewResetToken returns a cryptographically secure random token (raw)
// used for password resets. Only its SHA-256 hash is stored.
func NewResetToken() (string, error) {
	return randomHex(32) // 32 bytes -> 64 hex chars
}

// HashResetRaw returns the SHA-256 hash of a raw reset token as a hex
// string. Storing only the hash prevents attackers from using stolen
// database entries to reset passwords.
func HashResetRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
