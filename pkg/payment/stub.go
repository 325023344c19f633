package payment

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StubGateway is a no-op gateway for development and tests; swap for a real
// provider (Stripe etc.) via config.
type StubGateway struct{}

func (s *StubGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref := fmt.Sprintf("stub_%d_%d", time.Now().UnixNano(), amountCents)
	return &Intent{
		ID:           ref,
		ClientSecret: ref + "_secret",
		Status:       StatusPending,
	}, nil
}

func (s *StubGateway) ConfirmIntent(ctx context.Context, intentID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !strings.HasPrefix(intentID, "stub_") {
		return StatusFailed, nil
	}
	return StatusSucceeded, nil
}
