package models

import (
	"time"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         enums.Role `gorm:"type:text;column:role;not null;default:user"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}
