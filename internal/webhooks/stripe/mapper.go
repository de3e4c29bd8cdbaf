package stripewebhook

import (
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/harborpoint/billing-backend/pkg/db/models"
	"github.com/harborpoint/billing-backend/pkg/enums"
)

// buildSubscription maps a provider subscription snapshot onto a local row.
// Billing periods live on the subscription item in the current API shape.
func buildSubscription(sub *stripe.Subscription, customerID uuid.UUID, price *models.Price) *models.Subscription {
	now := time.Now().UTC()

	var priceID *uuid.UUID
	if price != nil {
		id := price.ID
		priceID = &id
	}

	periodStart, periodEnd := currentPeriod(sub)

	return &models.Subscription{
		ID:                   uuid.New(),
		CustomerID:           customerID,
		StripeSubscriptionID: sub.ID,
		Status:               enums.SubscriptionStatus(sub.Status),
		PriceID:              priceID,
		TrialStart:           epochToTime(sub.TrialStart),
		TrialEnd:             epochToTime(sub.TrialEnd),
		CurrentPeriodStart:   periodStart,
		CurrentPeriodEnd:     periodEnd,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		CanceledAt:           epochToTime(sub.CanceledAt),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func currentPeriod(sub *stripe.Subscription) (*time.Time, *time.Time) {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, nil
	}
	item := sub.Items.Data[0]
	return epochToTime(item.CurrentPeriodStart), epochToTime(item.CurrentPeriodEnd)
}

func epochToTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
