package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer links an application user to their Stripe customer object.
// Created once on first checkout; this service is the sole writer.
type Customer struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StripeCustomerID string    `gorm:"column:stripe_customer_id;not null;uniqueIndex"`
	Email            string    `gorm:"column:email;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
