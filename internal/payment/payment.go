package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Charger captures a payment. Implementations must return a DeclineError
// when the gateway rejects the card so callers can surface the gateway's
// user-facing message and roll back.
type Charger interface {
	Charge(ctx context.Context, amount decimal.Decimal, currency, token, description string) (ref string, err error)
}

// DeclineError carries the gateway's user-facing decline message verbatim.
type DeclineError struct {
	Message string
}

func (e *DeclineError) Error() string {
	return e.Message
}
