package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

var _ port.Authenticator = (*Auth)(nil)

type Auth struct {
	users       port.UsersRepository
	tokens      port.TokenIssuer
	adminEmails map[string]struct{}
}

// NewAuth returns the account service. Users signing up with one of
// adminEmails get the admin role.
func NewAuth(
	users port.UsersRepository, tokens port.TokenIssuer, adminEmails []string,
) *Auth {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Auth{users: users, tokens: tokens, adminEmails: admins}
}

func (a *Auth) Signup(ctx context.Context, s domain.Signup) (domain.Session, error) {
	const op = "Auth.Signup"
	log := slog.With("op", op)

	if err := s.Validate(); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	email := strings.TrimSpace(s.Email)
	_, err := a.users.ReadUserByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.Session{}, fmt.Errorf("%s: user: %w", op, domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := domain.HashPassword(s.Password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	u := domain.User{
		Username:     strings.TrimSpace(s.Username),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if _, ok := a.adminEmails[strings.ToLower(email)]; ok {
		u.Role = domain.RoleAdmin
	}
	if err := a.users.CreateUser(ctx, &u); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("user signed up", "userID", u.UserID, "role", u.Role)

	session, err := a.tokens.Issue(u)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// Login reports ErrUnauthorized for both an unknown email and a wrong
// password.
func (a *Auth) Login(ctx context.Context, c domain.Credentials) (domain.Session, error) {
	const op = "Auth.Login"

	u, err := a.users.ReadUserByEmail(ctx, strings.TrimSpace(c.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
		}
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if !domain.CheckPassword(u.PasswordHash, c.Password) {
		return domain.Session{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}

	session, err := a.tokens.Issue(u)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}
