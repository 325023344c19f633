package payment

import "context"

// Intent is the opaque result of creating a payment intent with the external
// gateway. Only the reference id and client secret are ever stored or
// returned; gateway credentials never pass through this package's callers.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

const (
	StatusPending   = "PENDING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Gateway abstracts the payment provider. Callers bound every call with a
// context deadline; CreateIntent is state-mutating and must never be retried
// automatically (double-charge risk), ConfirmIntent is a read-only poll.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	ConfirmIntent(ctx context.Context, intentID string) (string, error)
}
