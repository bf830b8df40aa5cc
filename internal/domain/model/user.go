package model

import (
	"time"

	"github.com/google/uuid"

	"tryonjewel-server/internal/domain"
)

type User struct {
	ID           string
	Email        string
	DailyQuota   int
	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewUser(id, email string, dailyQuota int) (*User, error) {
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = uuid.NewString()
	}
	if dailyQuota <= 0 {
		dailyQuota = 20
	}
	now := time.Now().UTC()
	return &User{
		ID:           id,
		Email:        email,
		DailyQuota:   dailyQuota,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}
