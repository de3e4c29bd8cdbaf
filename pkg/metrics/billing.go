package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics records webhook and checkout activity.
type BillingMetrics struct {
	webhookEvents    *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
}

// NewBillingMetrics registers the billing metrics on the provided registerer.
func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	if reg == nil {
		return &BillingMetrics{}
	}
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Stripe webhook events by type and outcome.",
	}, []string{"event_type", "outcome"})
	checkoutSessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout session creation attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(webhookEvents, checkoutSessions)
	return &BillingMetrics{
		webhookEvents:    webhookEvents,
		checkoutSessions: checkoutSessions,
	}
}

// ObserveWebhookEvent counts one processed webhook event.
func (m *BillingMetrics) ObserveWebhookEvent(eventType string, err error) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(eventType), outcomeLabel(err)).Inc()
}

// ObserveCheckoutSession counts one checkout session attempt.
func (m *BillingMetrics) ObserveCheckoutSession(err error) {
	if m == nil || m.checkoutSessions == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(outcomeLabel(err)).Inc()
}

func outcomeLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
