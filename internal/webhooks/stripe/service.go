package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/harborpoint/billing-backend/internal/billing"
	"github.com/harborpoint/billing-backend/pkg/enums"
	pkgerrors "github.com/harborpoint/billing-backend/pkg/errors"
	"github.com/harborpoint/billing-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	BillingRepo       billing.Repository
	StripeClient      billing.StripeBillingClient
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service projects Stripe webhook events into the local billing tables and
// keeps the derived user role in step with the subscription status.
type Service struct {
	billingRepo billing.Repository
	stripe      billing.StripeBillingClient
	txRunner    txRunner
	logg        *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.BillingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		billingRepo: params.BillingRepo,
		stripe:      params.StripeClient,
		txRunner:    params.TransactionRunner,
		logg:        params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	if s.logg != nil {
		ctx = s.logg.WithStripeEvent(ctx, event.ID, string(event.Type))
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated:
		stripeSub, err := decodeSubscription(event)
		if err != nil {
			return err
		}
		return s.syncSubscription(ctx, stripeSub)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		stripeSub, err := decodeSubscription(event)
		if err != nil {
			return err
		}
		return s.handleSubscriptionDeleted(ctx, stripeSub)
	case stripe.EventTypeInvoicePaymentSucceeded:
		subscriptionID := event.GetObjectValue("subscription")
		if subscriptionID == "" {
			// One-off invoices carry no subscription and need no projection.
			return nil
		}
		stripeSub, err := s.stripe.GetSubscription(ctx, subscriptionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe subscription")
		}
		return s.syncSubscription(ctx, stripeSub)
	case stripe.EventTypeInvoicePaymentFailed:
		subscriptionID := event.GetObjectValue("subscription")
		if subscriptionID == "" {
			return nil
		}
		return s.handlePaymentFailed(ctx, subscriptionID)
	case stripe.EventTypeCustomerSubscriptionTrialWillEnd:
		stripeSub, err := decodeSubscription(event)
		if err != nil {
			return err
		}
		return s.handleTrialWillEnd(ctx, stripeSub)
	default:
		if s.logg != nil {
			s.logg.Info(ctx, "webhook.event_ignored")
		}
		return nil
	}
}

// syncSubscription overwrites the stored subscription row with the event
// snapshot and recomputes the owner's role. Events for customers this service
// never saw are dropped without error.
func (s *Service) syncSubscription(ctx context.Context, stripeSub *stripe.Subscription) error {
	if err := validateSubscription(stripeSub); err != nil {
		return err
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.billingRepo.WithTx(tx)

		customer, err := repo.FindCustomerByStripeID(ctx, stripeSub.Customer.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
		}
		if customer == nil {
			if s.logg != nil {
				ctx := s.logg.WithField(ctx, "stripe_customer_id", stripeSub.Customer.ID)
				s.logg.Warn(ctx, "webhook.unknown_customer")
			}
			return nil
		}

		price, err := repo.FindPriceByStripeID(ctx, determinePriceID(stripeSub))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load price")
		}

		row := buildSubscription(stripeSub, customer.ID, price)
		if err := repo.UpsertSubscription(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist subscription")
		}

		// Demotion happens only on subscription.deleted; other statuses
		// leave the role alone until Stripe settles the subscription.
		if row.Status.GrantsPremium() {
			if err := repo.SetUserRole(ctx, customer.UserID, enums.UserRolePremium); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user role")
			}
		}

		if s.logg != nil {
			ctx := s.logg.WithFields(ctx, map[string]any{
				"stripe_subscription_id": stripeSub.ID,
				"status":                 string(row.Status),
			})
			s.logg.Info(ctx, "webhook.subscription_synced")
		}
		return nil
	})
}

// handleSubscriptionDeleted marks the row canceled and demotes the owner.
// The row update happens even when the customer mapping is gone.
func (s *Service) handleSubscriptionDeleted(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil || stripeSub.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.billingRepo.WithTx(tx)

		if err := repo.MarkSubscriptionCanceled(ctx, stripeSub.ID, time.Now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark subscription canceled")
		}

		var stripeCustomerID string
		if stripeSub.Customer != nil {
			stripeCustomerID = stripeSub.Customer.ID
		}
		customer, err := repo.FindCustomerByStripeID(ctx, stripeCustomerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
		}
		if customer == nil {
			if s.logg != nil {
				s.logg.Warn(ctx, "webhook.unknown_customer")
			}
			return nil
		}

		if err := repo.SetUserRole(ctx, customer.UserID, enums.UserRoleFree); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user role")
		}

		if s.logg != nil {
			ctx := s.logg.WithField(ctx, "stripe_subscription_id", stripeSub.ID)
			s.logg.Info(ctx, "webhook.subscription_canceled")
		}
		return nil
	})
}

// handlePaymentFailed flags the subscription past_due. Role changes wait for
// the subsequent customer.subscription.updated event Stripe emits itself.
func (s *Service) handlePaymentFailed(ctx context.Context, stripeSubscriptionID string) error {
	if err := s.billingRepo.MarkSubscriptionPastDue(ctx, stripeSubscriptionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark subscription past due")
	}
	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "stripe_subscription_id", stripeSubscriptionID)
		s.logg.Info(ctx, "webhook.payment_failed")
	}
	return nil
}

// handleTrialWillEnd only records that the trial is about to lapse. Customer
// messaging is owned elsewhere. A payload without a subscription id is acked
// like the unknown-customer case; erroring would make Stripe retry an event
// this service can never apply.
func (s *Service) handleTrialWillEnd(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil || stripeSub.ID == "" {
		if s.logg != nil {
			s.logg.Warn(ctx, "webhook.trial_will_end_missing_subscription")
		}
		return nil
	}

	var stripeCustomerID string
	if stripeSub.Customer != nil {
		stripeCustomerID = stripeSub.Customer.ID
	}
	customer, err := s.billingRepo.FindCustomerByStripeID(ctx, stripeCustomerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}

	if s.logg != nil {
		fields := map[string]any{
			"stripe_subscription_id": stripeSub.ID,
			"trial_end":              stripeSub.TrialEnd,
		}
		if customer != nil {
			fields["user_id"] = customer.UserID.String()
		}
		ctx = s.logg.WithFields(ctx, fields)
		s.logg.Info(ctx, "webhook.trial_will_end")
	}
	return nil
}

func decodeSubscription(event *stripe.Event) (*stripe.Subscription, error) {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode subscription event")
	}
	return &stripeSub, nil
}

func validateSubscription(sub *stripe.Subscription) error {
	if sub == nil || sub.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription customer required")
	}
	return nil
}

func determinePriceID(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	if sub.Items.Data[0].Price != nil {
		return sub.Items.Data[0].Price.ID
	}
	return ""
}
