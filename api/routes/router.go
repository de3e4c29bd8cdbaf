package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborpoint/billing-backend/api/controllers"
	webhookcontrollers "github.com/harborpoint/billing-backend/api/controllers/webhooks"
	"github.com/harborpoint/billing-backend/api/middleware"
	"github.com/harborpoint/billing-backend/internal/billing"
	stripewebhook "github.com/harborpoint/billing-backend/internal/webhooks/stripe"
	"github.com/harborpoint/billing-backend/pkg/auth/session"
	"github.com/harborpoint/billing-backend/pkg/config"
	"github.com/harborpoint/billing-backend/pkg/db"
	"github.com/harborpoint/billing-backend/pkg/logger"
	"github.com/harborpoint/billing-backend/pkg/metrics"
	"github.com/harborpoint/billing-backend/pkg/redis"
	"github.com/harborpoint/billing-backend/pkg/stripe"
)

type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          redis.Pinger
	Sessions       session.AccessSessionChecker
	BillingService billing.Service
	WebhookService *stripewebhook.Service
	StripeClient   *stripe.Client
	Metrics        *metrics.BillingMetrics
	Registry       *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, params.DB, params.Redis, logg))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Use(middleware.CORS())
		r.Options("/stripe", preflightOK)
		r.Post("/stripe", webhookcontrollers.StripeWebhook(params.WebhookService, params.StripeClient, params.Metrics, logg))
	})

	r.Route("/api/v1/billing", func(r chi.Router) {
		r.Use(middleware.CORS())
		// OPTIONS stays outside the auth chain; browsers send preflights
		// without credentials.
		r.Options("/checkout-session", preflightOK)
		r.With(middleware.Auth(cfg.JWT, params.Sessions, logg)).
			Post("/checkout-session", controllers.CreateCheckoutSession(params.BillingService, params.Metrics, logg))
	})

	return r
}

// preflightOK answers OPTIONS requests the CORS middleware passes through,
// so header-less probes get 200 instead of chi's 405.
func preflightOK(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
