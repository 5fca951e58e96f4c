// Package auth holds the authentication primitives: the token codec, the
// password verifier and salt generation. It has no knowledge of storage or
// transport.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried inside an access token. Salt is a copy of
// the user's salt at issuance time; Exp is a Unix timestamp in seconds.
type Claims struct {
	ID   string
	Salt string
	Exp  int64
}

// NewClaims builds claims for userID that expire ttl after now.
func NewClaims(userID, salt string, now time.Time, ttl time.Duration) Claims {
	return Claims{
		ID:   userID,
		Salt: salt,
		Exp:  now.Add(ttl).Unix(),
	}
}

// tokenClaims is the wire form: {"id": ..., "salt": ..., "exp": ...}.
type tokenClaims struct {
	UserID string `json:"id"`
	Salt   string `json:"salt"`
	jwt.RegisteredClaims
}

// Keys holds the signing and verification keys derived from the configured
// secret. A Keys value is immutable after NewKeys and safe for concurrent use.
type Keys struct {
	encoding []byte
	decoding []byte
}

// NewKeys derives the HS256 key pair from secret.
func NewKeys(secret []byte) *Keys {
	return &Keys{
		encoding: append([]byte(nil), secret...),
		decoding: append([]byte(nil), secret...),
	}
}

// Encode signs claims with the encoding key.
func (k *Keys) Encode(claims Claims) (string, error) {
	return EncodeToken(claims, k.encoding)
}

// Decode verifies token with the decoding key and returns its claims.
func (k *Keys) Decode(token string) (Claims, error) {
	return DecodeToken(token, k.decoding)
}

// EncodeToken signs claims as a compact HS256 JWT.
func EncodeToken(claims Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: claims.ID,
		Salt:   claims.Salt,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.Exp, 0)),
		},
	})

	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return tokenString, nil
}

// DecodeToken parses and verifies tokenString. A bad signature, a malformed
// token, a foreign algorithm, a missing or past expiration all yield an
// error wrapping common.ErrInvalidToken; callers must not tell them apart
// in responses.
func DecodeToken(tokenString string, key []byte) (Claims, error) {
	tc := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, tc, func(t *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || tc.UserID == "" {
		return Claims{}, common.ErrInvalidToken
	}

	return Claims{ID: tc.UserID, Salt: tc.Salt, Exp: tc.ExpiresAt.Unix()}, nil
}
