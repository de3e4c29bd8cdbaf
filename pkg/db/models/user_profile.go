package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborpoint/billing-backend/pkg/enums"
)

// UserProfile carries the derived entitlement tier for an application user.
// The id matches the auth user id; role is a projection of the most recently
// observed subscription status for that user's customer.
type UserProfile struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Role      enums.UserRole `gorm:"column:role;not null;default:'free'"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
