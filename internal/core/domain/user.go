package domain

import (
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	UserID       uint
	Username     string
	Email        string
	PasswordHash string
	Role         Role
}

type Signup struct {
	Username string
	Email    string
	Password string
}

const minPasswordLen = 6

func (s Signup) Validate() error {
	if strings.TrimSpace(s.Username) == "" {
		return invalid("username is required")
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return invalid("email is invalid")
	}
	if len(s.Password) < minPasswordLen {
		return invalid("password is too short")
	}
	return nil
}

type Credentials struct {
	Email    string
	Password string
}

// Claims are the identity facts carried by a session token.
type Claims struct {
	UserID uint
	Role   Role
}

type Session struct {
	Token     string
	UserID    uint
	ExpiresAt time.Time
}

func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(hash), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
