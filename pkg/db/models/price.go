package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Price is read-only reference data mirroring the Stripe price catalog.
// Rows are populated out of band; the projector only resolves ids from it.
type Price struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StripePriceID string          `gorm:"column:stripe_price_id;not null;uniqueIndex"`
	UnitAmount    decimal.Decimal `gorm:"column:unit_amount;type:numeric(12,2);not null;default:0"`
	Currency      string          `gorm:"column:currency;not null;default:'aud'"`
	Interval      string          `gorm:"column:interval;not null;default:'month'"`
	Active        bool            `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
