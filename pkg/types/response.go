package types

// ErrorResponse is the uniform failure body on the public billing routes.
// Stripe's webhook retry policy keys off the 400 status carrying this shape.
type ErrorResponse struct {
	Error string `json:"error"`
}
