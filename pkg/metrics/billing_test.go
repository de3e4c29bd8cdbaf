package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveWebhookEventCountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBillingMetrics(reg)

	m.ObserveWebhookEvent("customer.subscription.updated", nil)
	m.ObserveWebhookEvent("customer.subscription.updated", nil)
	m.ObserveWebhookEvent("invoice.payment_failed", errors.New("boom"))

	ok := testutil.ToFloat64(m.webhookEvents.WithLabelValues("customer.subscription.updated", "success"))
	if ok != 2 {
		t.Fatalf("expected 2 successes, got %v", ok)
	}
	failed := testutil.ToFloat64(m.webhookEvents.WithLabelValues("invoice.payment_failed", "failure"))
	if failed != 1 {
		t.Fatalf("expected 1 failure, got %v", failed)
	}
}

func TestObserveCheckoutSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBillingMetrics(reg)

	m.ObserveCheckoutSession(nil)
	m.ObserveCheckoutSession(errors.New("stripe down"))

	if got := testutil.ToFloat64(m.checkoutSessions.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkoutSessions.WithLabelValues("failure")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	m := NewBillingMetrics(nil)
	m.ObserveWebhookEvent("anything", nil)
	m.ObserveCheckoutSession(nil)
}
