package lib

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// CreatePaymentIntent charges the given amount immediately. The booking
// reference travels in the metadata so webhook deliveries can be correlated
// back to the booking.
func CreatePaymentIntent(ctx context.Context, amountCents int64, currency, bookingRef, paymentMethod string) (*stripe.PaymentIntent, error) {
	sc := GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Confirm:  stripe.Bool(true),
		Metadata: map[string]string{
			"booking_reference": bookingRef,
		},
	}
	if paymentMethod != "" {
		params.PaymentMethod = stripe.String(paymentMethod)
	}
	intent, err := sc.V1PaymentIntents.Create(ctx, &params)
	if err != nil {
		return nil, err
	}
	return intent, nil
}
