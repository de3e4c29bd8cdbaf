package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborpoint/billing-backend/api/middleware"
	"github.com/harborpoint/billing-backend/internal/billing"
	pkgerrors "github.com/harborpoint/billing-backend/pkg/errors"
)

type stubBillingService struct {
	result *billing.CheckoutSession
	err    error

	gotUser  billing.Identity
	gotInput billing.CheckoutInput
	calls    int
}

func (s *stubBillingService) CreateCheckoutSession(ctx context.Context, user billing.Identity, input billing.CheckoutInput) (*billing.CheckoutSession, error) {
	s.calls++
	s.gotUser = user
	s.gotInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func checkoutRequest(t *testing.T, body string, user *middleware.AuthenticatedUser) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout-session", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	return req
}

func TestCreateCheckoutSession_Success(t *testing.T) {
	svc := &stubBillingService{
		result: &billing.CheckoutSession{SessionID: "cs_1", URL: "https://checkout.stripe.com/cs_1"},
	}
	handler := CreateCheckoutSession(svc, nil, nil)

	user := middleware.AuthenticatedUser{ID: uuid.New(), Email: "buyer@example.com"}
	body := `{"priceId":"price_1","successUrl":"https://app.example.com/ok","cancelUrl":"https://app.example.com/no"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(t, body, &user))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		URL       string `json:"url"`
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.stripe.com/cs_1", resp.URL)
	assert.Equal(t, "cs_1", resp.SessionID)

	assert.Equal(t, user.ID, svc.gotUser.ID)
	assert.Equal(t, user.Email, svc.gotUser.Email)
	assert.Equal(t, "price_1", svc.gotInput.PriceID)
}

func TestCreateCheckoutSession_MissingIdentity(t *testing.T) {
	svc := &stubBillingService{}
	handler := CreateCheckoutSession(svc, nil, nil)

	body := `{"priceId":"price_1","successUrl":"https://a.example.com","cancelUrl":"https://b.example.com"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(t, body, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestCreateCheckoutSession_ValidationFailure(t *testing.T) {
	svc := &stubBillingService{}
	handler := CreateCheckoutSession(svc, nil, nil)
	user := middleware.AuthenticatedUser{ID: uuid.New(), Email: "buyer@example.com"}

	cases := map[string]string{
		"missing price":  `{"successUrl":"https://a.example.com","cancelUrl":"https://b.example.com"}`,
		"bad success":    `{"priceId":"price_1","successUrl":"not-a-url","cancelUrl":"https://b.example.com"}`,
		"unknown field":  `{"priceId":"price_1","successUrl":"https://a.example.com","cancelUrl":"https://b.example.com","mode":"payment"}`,
		"malformed json": `{"priceId":`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, checkoutRequest(t, body, &user))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Equal(t, 0, svc.calls)
}

func TestCreateCheckoutSession_ServiceFailure(t *testing.T) {
	svc := &stubBillingService{
		err: pkgerrors.New(pkgerrors.CodeDependency, "stripe unavailable"),
	}
	handler := CreateCheckoutSession(svc, nil, nil)
	user := middleware.AuthenticatedUser{ID: uuid.New(), Email: "buyer@example.com"}

	body := `{"priceId":"price_1","successUrl":"https://a.example.com","cancelUrl":"https://b.example.com"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(t, body, &user))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}
