package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborpoint/billing-backend/pkg/db/models"
	"github.com/harborpoint/billing-backend/pkg/enums"
)

// Repository handles billing persistence across customers, prices,
// subscriptions and the derived user role.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCustomerByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error)
	FindCustomerByStripeID(ctx context.Context, stripeCustomerID string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	FindPriceByStripeID(ctx context.Context, stripePriceID string) (*models.Price, error)
	UpsertSubscription(ctx context.Context, subscription *models.Subscription) error
	MarkSubscriptionCanceled(ctx context.Context, stripeSubscriptionID string, canceledAt time.Time) error
	MarkSubscriptionPastDue(ctx context.Context, stripeSubscriptionID string) error
	SetUserRole(ctx context.Context, userID uuid.UUID, role enums.UserRole) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a billing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCustomerByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindCustomerByStripeID(ctx context.Context, stripeCustomerID string) (*models.Customer, error) {
	if stripeCustomerID == "" {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", stripeCustomerID).
		First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) FindPriceByStripeID(ctx context.Context, stripePriceID string) (*models.Price, error) {
	if stripePriceID == "" {
		return nil, nil
	}
	var price models.Price
	if err := r.db.WithContext(ctx).
		Where("stripe_price_id = ?", stripePriceID).
		First(&price).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

// UpsertSubscription writes the full provider snapshot keyed on
// stripe_subscription_id. Every column the event carries is overwritten so
// replays and repeats stay idempotent at the row level.
func (r *repository) UpsertSubscription(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_subscription_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_id",
				"status",
				"price_id",
				"trial_start",
				"trial_end",
				"current_period_start",
				"current_period_end",
				"cancel_at_period_end",
				"canceled_at",
				"updated_at",
			}),
		}).
		Create(subscription).Error
}

func (r *repository) MarkSubscriptionCanceled(ctx context.Context, stripeSubscriptionID string, canceledAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]any{
			"status":      enums.SubscriptionStatusCanceled,
			"canceled_at": canceledAt,
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *repository) MarkSubscriptionPastDue(ctx context.Context, stripeSubscriptionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]any{
			"status":     enums.SubscriptionStatusPastDue,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) SetUserRole(ctx context.Context, userID uuid.UUID, role enums.UserRole) error {
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"role":       role,
			"updated_at": time.Now().UTC(),
		}).Error
}
