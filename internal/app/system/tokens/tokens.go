// Package tokens signs and verifies the bearer tokens handed out at signin.
//
// Tokens are HS256 JWTs carrying the user id as subject and a kind claim
// that separates access tokens from refresh tokens. The signing secret is
// injected from configuration.
package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind separates access tokens from refresh tokens.
type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
)

var (
	// ErrInvalid is returned for any token that fails signature, expiry,
	// issuer or kind checks.
	ErrInvalid = errors.New("invalid token")
	// ErrNoSecret is returned by NewCodec when the secret is empty.
	ErrNoSecret = errors.New("token secret is empty")
)

// Claims is the JWT payload.
type Claims struct {
	Kind Kind `json:"typ"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a shared secret.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewCodec builds a Codec. The issuer is stamped on every token and checked
// on verify.
func NewCodec(secret, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Codec{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// WithClock returns a copy of c that reads time from now. Used in tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// Sign issues a token of the given kind for userID that expires after ttl.
func (c *Codec) Sign(userID primitive.ObjectID, kind Kind, ttl time.Duration) (string, time.Time, error) {
	now := c.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.Hex(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks raw and returns the user id it was issued for.
func (c *Codec) Verify(raw string, kind Kind) (primitive.ObjectID, error) {
	if raw == "" {
		return primitive.NilObjectID, ErrInvalid
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return primitive.NilObjectID, ErrInvalid
	}
	if claims.Kind != kind {
		return primitive.NilObjectID, ErrInvalid
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrInvalid
	}
	return id, nil
}

// Hash returns the hex SHA-256 of a token. Only hashes are persisted.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
