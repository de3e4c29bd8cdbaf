package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware with the permissive policy the billing endpoints
// ship with: browsers hit the checkout route from the web app and Stripe's
// dashboard replays webhooks, so OPTIONS preflights must always succeed.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature", "X-Client-Info"},
		MaxAge:         300,
	}).Handler
}
