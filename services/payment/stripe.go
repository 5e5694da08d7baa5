package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway authorizes reservation payments with Stripe PaymentIntents.
// Cancels and refunds belong to the cancellation flows, which live elsewhere.
type StripeGateway struct {
	intents intentAPI
}

// NewStripeGateway builds a gateway on its own Stripe client rather than the
// package-level key.
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is not configured")
	}
	sc := client.New(secretKey, nil)
	return &StripeGateway{intents: sc.PaymentIntents}, nil
}

// Authorize creates a PaymentIntent with automatic payment methods. The
// returned client secret lets the customer complete payment client-side.
func (g *StripeGateway) Authorize(ctx context.Context, req AuthorizationRequest) (*Authorization, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("invalid payment amount %d", req.Amount)
	}
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return toAuthorization(pi), nil
}

func toAuthorization(pi *stripe.PaymentIntent) *Authorization {
	return &Authorization{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}
