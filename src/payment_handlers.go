package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"sbs/src/booking"
	"sbs/src/db"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings/:id/purchase", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.PurchaseRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			b, _, err := booking.GetBooking(params.ID, userId)
			if err != nil {
				respondBookingError(ctx, err)
				return
			}
			// Purchasing a hold confirms it first; anything else must
			// already be CONFIRMED_BOOKING.
			if b.Status == types.BOOKING_TEMPORARY_HOLD {
				confirmed, err := booking.Confirm(ctx.Request.Context(), b.ID, userId)
				if err != nil {
					respondBookingError(ctx, err)
					return
				}
				b = confirmed
			}
			if b.Status != types.BOOKING_CONFIRMED {
				respondBookingError(ctx, booking.ErrInvalidTransition)
				return
			}

			amountCents := int64(b.Price * 100)
			gw := lib.GetPaymentGateway()
			result, err := gw.AttemptPurchase(ctx.Request.Context(), b.Reference, amountCents, b.Currency, body.PaymentMethod)
			if err != nil {
				log.Printf("Settlement error for booking %d: %s\n", b.ID, err.Error())
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
				return
			}
			if !result.Approved {
				if _, err := booking.PaymentFailed(ctx.Request.Context(), b.ID); err != nil {
					respondBookingError(ctx, err)
					return
				}
				ctx.JSON(http.StatusPaymentRequired, gin.H{"error": result.Message})
				return
			}

			purchased, err := booking.Purchase(ctx.Request.Context(), b.ID, result.TransactionID)
			if err != nil {
				respondBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": purchased, "txn": result.TransactionID})
		})
	return g
}

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		if !gjson.ValidBytes(payload) {
			log.Println("Received invalid json body. Aborting")
			ctx.Status(http.StatusBadRequest)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			b, err := bookingByReference(pi.Metadata["booking_reference"])
			if err != nil {
				log.Printf("[Stripe] %s\n", err.Error())
				break
			}
			if _, err := booking.Purchase(ctx.Request.Context(), b.ID, pi.ID); err != nil {
				log.Printf("[Stripe] Could not settle booking %d: %s\n", b.ID, err.Error())
			}
		case "payment_intent.payment_failed":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			b, err := bookingByReference(pi.Metadata["booking_reference"])
			if err != nil {
				log.Printf("[Stripe] %s\n", err.Error())
				break
			}
			if _, err := booking.PaymentFailed(ctx.Request.Context(), b.ID); err != nil {
				log.Printf("[Stripe] Could not cancel booking %d: %s\n", b.ID, err.Error())
			}
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}

func bookingByReference(ref string) (*models.Booking, error) {
	if ref == "" {
		return nil, errors.New("missing booking reference in payment metadata")
	}
	conn := db.GetDb()
	var b models.Booking
	if err := conn.Where("reference = ?", ref).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
