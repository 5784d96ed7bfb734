package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotConfigured is returned when the provider has no credentials.
var ErrNotConfigured = errors.New("payment provider not configured")

// IntentRequest describes a payment the client is about to confirm.
type IntentRequest struct {
	// Amount in major units, e.g. 12.50.
	Amount             decimal.Decimal
	Currency           string
	PaymentMethodTypes []string
	Description        string
	Metadata           map[string]string
}

// Intent is the provider's answer to an IntentRequest.
type Intent struct {
	ID           string
	ClientSecret string
}

// IntentCreator creates payment intents at a third-party provider.
type IntentCreator interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// MinorUnits converts a major-unit amount to the provider's smallest unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
