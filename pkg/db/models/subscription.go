package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborpoint/billing-backend/pkg/enums"
)

// Subscription persists Stripe subscription state per customer. Rows are
// upserted keyed on stripe_subscription_id; each event overwrites the full
// row so local state never drifts from the provider snapshot.
type Subscription struct {
	ID                   uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID           uuid.UUID                `gorm:"column:customer_id;type:uuid;not null;index"`
	StripeSubscriptionID string                   `gorm:"column:stripe_subscription_id;not null;uniqueIndex"`
	Status               enums.SubscriptionStatus `gorm:"column:status;not null"`
	PriceID              *uuid.UUID               `gorm:"column:price_id;type:uuid"`
	TrialStart           *time.Time               `gorm:"column:trial_start"`
	TrialEnd             *time.Time               `gorm:"column:trial_end"`
	CurrentPeriodStart   *time.Time               `gorm:"column:current_period_start"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end"`
	CancelAtPeriodEnd    bool                     `gorm:"column:cancel_at_period_end;not null;default:false"`
	CanceledAt           *time.Time               `gorm:"column:canceled_at"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
