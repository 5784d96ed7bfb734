package gateway

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// Omise creates payment sources through the Omise API. The source ID plays
// the role of the client secret: the client charges it to complete payment.
type Omise struct {
	client     *omise.Client
	sourceType string
}

// NewOmise builds an Omise gateway. sourceType defaults to promptpay.
func NewOmise(publicKey, secretKey, sourceType string) (*Omise, error) {
	if sourceType == "" {
		sourceType = "promptpay"
	}
	if publicKey == "" || secretKey == "" {
		return &Omise{sourceType: sourceType}, nil
	}
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	return &Omise{client: c, sourceType: sourceType}, nil
}

func (o *Omise) Name() string { return "omise" }

func (o *Omise) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if o.client == nil {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := &omise.Source{}
	op := &operations.CreateSource{
		Type:     o.sourceType,
		Amount:   MinorUnits(req.Amount),
		Currency: req.Currency,
	}
	if err := o.client.Do(src, op); err != nil {
		return nil, fmt.Errorf("omise source: %w", err)
	}
	return &Intent{ID: src.ID, ClientSecret: src.ID}, nil
}
