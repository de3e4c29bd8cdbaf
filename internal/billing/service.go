package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/harborpoint/billing-backend/pkg/config"
	"github.com/harborpoint/billing-backend/pkg/db"
	"github.com/harborpoint/billing-backend/pkg/db/models"
	pkgerrors "github.com/harborpoint/billing-backend/pkg/errors"
	"github.com/harborpoint/billing-backend/pkg/logger"
)

const metadataUserIDKey = "user_id"

// Identity is the authenticated caller a checkout session is created for.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// CheckoutInput carries the caller supplied checkout parameters. Everything
// else about the session is fixed server side.
type CheckoutInput struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the hosted checkout handle returned to the client.
type CheckoutSession struct {
	SessionID string
	URL       string
}

type Service interface {
	CreateCheckoutSession(ctx context.Context, user Identity, input CheckoutInput) (*CheckoutSession, error)
}

type ServiceParams struct {
	Repo   Repository
	Stripe StripeBillingClient
	Policy config.CheckoutConfig
	Logger *logger.Logger
}

type service struct {
	repo   Repository
	stripe StripeBillingClient
	policy config.CheckoutConfig
	logg   *logger.Logger
}

func NewService(params ServiceParams) Service {
	return &service{
		repo:   params.Repo,
		stripe: params.Stripe,
		policy: params.Policy,
		logg:   params.Logger,
	}
}

func (s *service) CreateCheckoutSession(ctx context.Context, user Identity, input CheckoutInput) (*CheckoutSession, error) {
	if user.ID == uuid.Nil || user.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}

	customer, err := s.resolveCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customer.StripeCustomerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
		Currency:   stripe.String(s.policy.Currency),
		Locale:     stripe.String(s.policy.Locale),
		PaymentMethodTypes: []*string{
			stripe.String("card"),
		},
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(input.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(s.policy.TrialPeriodDays),
		},
	}
	params.AddMetadata(metadataUserIDKey, user.ID.String())

	checkoutSession, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	if checkoutSession == nil || checkoutSession.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout session missing redirect url")
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"stripe_customer_id": customer.StripeCustomerID,
			"checkout_session":   checkoutSession.ID,
		})
		s.logg.Info(ctx, "checkout.session_created")
	}

	return &CheckoutSession{
		SessionID: checkoutSession.ID,
		URL:       checkoutSession.URL,
	}, nil
}

// resolveCustomer finds or creates the Stripe customer for a user. Concurrent
// first checkouts race on the user_id unique index; the loser refetches and
// reuses the winner's mapping.
func (s *service) resolveCustomer(ctx context.Context, user Identity) (*models.Customer, error) {
	existing, err := s.repo.FindCustomerByUserID(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	if existing != nil {
		return existing, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
	}
	params.AddMetadata(metadataUserIDKey, user.ID.String())

	created, err := s.stripe.CreateCustomer(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	if created == nil || created.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "customer create returned no id")
	}

	customer := &models.Customer{
		ID:               uuid.New(),
		UserID:           user.ID,
		StripeCustomerID: created.ID,
		Email:            user.Email,
	}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "") {
			winner, findErr := s.repo.FindCustomerByUserID(ctx, user.ID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "load customer after conflict")
			}
			if winner != nil {
				if s.logg != nil {
					ctx = s.logg.WithField(ctx, "orphan_stripe_customer_id", created.ID)
					s.logg.Warn(ctx, "checkout.customer_create_raced")
				}
				return winner, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist customer")
	}

	return customer, nil
}
