package lib

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
)

type PaymentResult struct {
	Approved      bool
	TransactionID string
	Message       string
}

// PaymentGateway is the settlement boundary: it either approves or declines
// a charge. Approval drives purchase(), a decline drives the cancel path.
type PaymentGateway interface {
	AttemptPurchase(ctx context.Context, bookingRef string, amountCents int64, currency string, paymentMethod string) (*PaymentResult, error)
}

var gateway PaymentGateway

func GetPaymentGateway() PaymentGateway {
	if gateway != nil {
		return gateway
	}
	if os.Getenv("STRIPE_SECRET_KEY") == "" && os.Getenv("API_ENV") == "local" {
		gateway = &LocalGateway{}
		return gateway
	}
	gateway = &StripeGateway{}
	return gateway
}

// NewPaymentGateway replaces the gateway, used by tests to install a stub.
func NewPaymentGateway(g PaymentGateway) PaymentGateway {
	gateway = g
	return gateway
}

type StripeGateway struct{}

func (g *StripeGateway) AttemptPurchase(ctx context.Context, bookingRef string, amountCents int64, currency string, paymentMethod string) (*PaymentResult, error) {
	intent, err := CreatePaymentIntent(ctx, amountCents, currency, bookingRef, paymentMethod)
	if err != nil {
		log.Printf("[stripe] Error creating PaymentIntent for %s: %s\n", bookingRef, err.Error())
		return nil, err
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return &PaymentResult{
			Approved:      false,
			TransactionID: intent.ID,
			Message:       "Payment declined",
		}, nil
	}
	return &PaymentResult{
		Approved:      true,
		TransactionID: intent.ID,
		Message:       "Payment processed successfully",
	}, nil
}

// LocalGateway approves everything; used when API_ENV is local and no
// Stripe key is configured.
type LocalGateway struct{}

func (g *LocalGateway) AttemptPurchase(ctx context.Context, bookingRef string, amountCents int64, currency string, paymentMethod string) (*PaymentResult, error) {
	txnId := "TXN-" + uuid.NewString()
	log.Printf("[payments] Local gateway approving %s for %d %s\n", bookingRef, amountCents, currency)
	return &PaymentResult{
		Approved:      true,
		TransactionID: txnId,
		Message:       "Payment processed successfully",
	}, nil
}
