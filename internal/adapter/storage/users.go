package storage

import (
	"context"

	"github.com/niksmo/spellshop/internal/core/domain"
)

func (s *Storage) CreateUser(ctx context.Context, u *domain.User) error {
	const op = "Storage.CreateUser"

	m := user{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(op, err)
	}
	u.UserID = m.UserID
	return nil
}

func (s *Storage) ReadUserByEmail(
	ctx context.Context, email string,
) (domain.User, error) {
	const op = "Storage.ReadUserByEmail"

	var m user
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&m).Error
	if err != nil {
		return domain.User{}, translate(op, err)
	}
	return domain.User{
		UserID:       m.UserID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
	}, nil
}
