package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec issues and verifies session tokens. Tokens are HS256-signed JWTs
// whose subject is the account id; verification is stateless so the gate
// can run it on every request without touching storage.
type Codec struct {
	secret []byte
}

// NewCodec creates a token codec signing with the given secret. The secret
// must be non-empty; config validation rejects an empty one before this
// point, so the check here is a hard programming-error guard.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token codec requires a non-empty signing secret")
	}
	return &Codec{secret: secret}, nil
}

// Issue creates a signed token for the given account, valid for ttl from
// now.
func (c *Codec) Issue(accountID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(accountID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry and returns the account id
// it was issued for. Every failure mode collapses to ErrInvalidToken; the
// caller treats a bad token exactly like a missing one.
func (c *Codec) Verify(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		return 0, ErrInvalidToken
	}
	return accountID, nil
}
