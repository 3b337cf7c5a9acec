// Package auth issues and verifies HS256 session tokens.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

var (
	_ port.TokenIssuer   = (*JWT)(nil)
	_ port.TokenVerifier = (*JWT)(nil)
)

const minSecretLen = 16

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID uint        `json:"id"`
	Role   domain.Role `json:"role"`
}

type JWT struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret, issuer string, ttl time.Duration) (*JWT, error) {
	const op = "NewJWT"

	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("%s: secret must be at least %d bytes", op, minSecretLen)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%s: token ttl must be positive", op)
	}
	return &JWT{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (j *JWT) Issue(u domain.User) (domain.Session, error) {
	const op = "JWT.Issue"

	now := j.now().UTC()
	exp := now.Add(j.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Subject:   strconv.FormatUint(uint64(u.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: u.UserID,
		Role:   u.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.Session{Token: token, UserID: u.UserID, ExpiresAt: exp}, nil
}

func (j *JWT) Verify(token string) (domain.Claims, error) {
	const op = "JWT.Verify"

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%s: %w: %w", op, domain.ErrUnauthorized, mapJWTError(err))
	}
	if parsed.UserID == 0 {
		return domain.Claims{}, fmt.Errorf("%s: %w: token has no user", op, domain.ErrUnauthorized)
	}
	return domain.Claims{UserID: parsed.UserID, Role: parsed.Role}, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.New("token is expired")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.New("token signature is invalid")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errors.New("token is malformed")
	}
	return err
}
