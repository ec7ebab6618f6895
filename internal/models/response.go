package models

// APIResponse is the shared response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// CheckoutSessionResponse carries the hosted payment redirect.
type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CaptureResponse is returned by the direct wallet capture flow.
type CaptureResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

// WebhookAck is the webhook acknowledgment body.
type WebhookAck struct {
	Received bool `json:"received"`
}
