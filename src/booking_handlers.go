package main

import (
	"errors"
	"log"
	"net/http"
	"sbs/src/booking"
	"sbs/src/types"
	"time"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateHoldRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			holdDuration := time.Duration(body.HoldMinutes) * time.Minute
			b, err := booking.CreateHold(ctx.Request.Context(), userId, body.EventID, body.SeatIDs, holdDuration)
			if err != nil {
				respondBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": b, "reference": b.Reference})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			bookings, err := booking.ListUserBookings(userId)
			if err != nil {
				log.Printf("Error retrieving bookings for user %d: %s\n", userId, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			b, seatIds, err := booking.GetBooking(params.ID, userId)
			if err != nil {
				respondBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": b, "seat_ids": seatIds})
		}).
		PUT("/bookings/:id/confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			b, err := booking.Confirm(ctx.Request.Context(), params.ID, userId)
			if err != nil {
				respondBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": b})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			b, err := booking.Cancel(ctx.Request.Context(), params.ID, userId)
			if err != nil {
				respondBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": b})
		})
	return g
}

func respondBookingError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrSeatsUnavailable):
		ctx.JSON(http.StatusConflict, gin.H{"error": booking.ErrSeatsUnavailable.Error()})
	case errors.Is(err, booking.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, gin.H{"error": booking.ErrInvalidTransition.Error()})
	case errors.Is(err, booking.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, booking.ErrEmptySeatSet):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": booking.ErrEmptySeatSet.Error()})
	default:
		log.Printf("Could not complete request: %s\n", err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
	}
}
