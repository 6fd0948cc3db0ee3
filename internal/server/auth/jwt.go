// Package auth implements the session core: password hashing, the signed
// token codec, the session gate and the session cookie.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/timex"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of a token when none is given.
const DefaultTokenTTL = 30 * time.Minute

// Claims is the token payload: {"id": 1, "username": "alice", "expire": "<ISO-8601>"}.
type Claims struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Expire   timex.Timestamp `json:"expire"`
}

// ExpiresAt returns the absolute expiry instant.
func (c *Claims) ExpiresAt() time.Time { return c.Expire.Time }

// GetExpirationTime implements jwt.Claims. Only the expiry is populated, the
// other registered claims below are always empty.
func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.Expire.IsZero() {
		return nil, nil
	}
	return jwt.NewNumericDate(c.Expire.Time), nil
}

func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c *Claims) GetIssuer() (string, error)              { return "", nil }
func (c *Claims) GetSubject() (string, error)             { return "", nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// TokenCodec signs and verifies HS256 tokens with a shared secret.
//
// Decode checks the signature and the payload shape but not the expiry;
// call IsExpired separately. This lets tooling read an expired token.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec returns a codec for secret. A zero ttl selects DefaultTokenTTL.
func NewTokenCodec(secret []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// TTL returns the default lifetime of tokens minted by Encode.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Encode mints a token for the subject that expires after the codec's TTL.
func (c *TokenCodec) Encode(id int64, username string) (string, error) {
	return c.EncodeTTL(id, username, c.ttl)
}

// EncodeTTL mints a token that expires ttl from now. A non-positive ttl
// falls back to the codec's TTL.
func (c *TokenCodec) EncodeTTL(id int64, username string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	claims := &Claims{
		ID:       id,
		Username: username,
		Expire:   timex.NewTimestamp(c.now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Decode verifies the signature and returns the claims. It fails with
// common.ErrInvalidSignature or common.ErrMalformedToken.
func (c *TokenCodec) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(token, claims, c.key)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return nil, common.ErrInvalidSignature
		}
		return nil, common.ErrMalformedToken
	}
	if claims.ID <= 0 || claims.Expire.IsZero() {
		return nil, common.ErrMalformedToken
	}
	return claims, nil
}

// IsExpired reports whether now is strictly after the claims' expiry.
// A token is still valid at the exact instant it expires.
func (c *TokenCodec) IsExpired(claims *Claims) bool {
	return c.now().After(claims.ExpiresAt())
}

func (c *TokenCodec) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return c.secret, nil
}
