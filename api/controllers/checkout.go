package controllers

import (
	"net/http"

	"github.com/harborpoint/billing-backend/api/middleware"
	"github.com/harborpoint/billing-backend/api/responses"
	"github.com/harborpoint/billing-backend/api/validators"
	"github.com/harborpoint/billing-backend/internal/billing"
	pkgerrors "github.com/harborpoint/billing-backend/pkg/errors"
	"github.com/harborpoint/billing-backend/pkg/logger"
	"github.com/harborpoint/billing-backend/pkg/metrics"
)

type checkoutSessionRequest struct {
	PriceID    string `json:"priceId" validate:"required"`
	SuccessURL string `json:"successUrl" validate:"required,url"`
	CancelURL  string `json:"cancelUrl" validate:"required,url"`
}

type checkoutSessionResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// CreateCheckoutSession starts a hosted subscription checkout for the
// authenticated user and hands the redirect URL back to the client.
func CreateCheckoutSession(svc billing.Service, met *metrics.BillingMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		user, err := middleware.UserFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req checkoutSessionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateCheckoutSession(ctx, billing.Identity{
			ID:    user.ID,
			Email: user.Email,
		}, billing.CheckoutInput{
			PriceID:    req.PriceID,
			SuccessURL: req.SuccessURL,
			CancelURL:  req.CancelURL,
		})
		met.ObserveCheckoutSession(err)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkoutSessionResponse{
			URL:       result.URL,
			SessionID: result.SessionID,
		})
	}
}
