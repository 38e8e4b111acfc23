package booking

import (
	"context"
	"errors"
	"log"
	"sbs/src/config"
	"sbs/src/db"
	"sbs/src/inventory"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/types"
	"sbs/src/utils"
	"time"

	"gorm.io/gorm"
)

// CreateHold reserves the requested seats and creates the TEMPORARY_HOLD
// booking in one transaction. Either both happen or neither does: a seat
// conflict rolls back the booking row and leaves the availability counter
// untouched. When two requests race for overlapping seats exactly one wins;
// the loser gets ErrSeatsUnavailable.
func CreateHold(ctx context.Context, userId uint, eventId uint, seatIds []uint, holdDuration time.Duration) (*models.Booking, error) {
	if len(seatIds) == 0 {
		return nil, ErrEmptySeatSet
	}
	if holdDuration <= 0 {
		holdDuration = config.GetHoldDuration()
	}

	var booking models.Booking
	var expiresAt time.Time
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", eventId).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		// Fast-path check against the counter. The seat map below is the
		// authority; this just cuts the obvious losers off early.
		if event.AvailableSeats < uint(len(seatIds)) {
			return ErrSeatsUnavailable
		}

		var seats []models.EventSeat
		if err := tx.
			Where("event_id = ? AND seat_id IN ?", eventId, seatIds).
			Find(&seats).
			Error; err != nil {
			return err
		}
		if len(seats) != len(seatIds) {
			return ErrNotFound
		}
		var price float32
		for _, s := range seats {
			price += s.Price
		}

		now := time.Now().UTC()
		expiresAt = now.Add(holdDuration)
		booking = models.Booking{
			Reference: utils.NewBookingReference(),
			UserID:    userId,
			EventID:   eventId,
			Status:    types.BOOKING_TEMPORARY_HOLD,
			Price:     price,
			Quantity:  uint(len(seatIds)),
			Currency:  "usd",
			ExpiresAt: &expiresAt,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		if _, err := inventory.Reserve(tx, eventId, seatIds, booking.ID); err != nil {
			if errors.Is(err, inventory.ErrSeatConflict) {
				return ErrSeatsUnavailable
			}
			if errors.Is(err, inventory.ErrSeatNotFound) {
				return ErrNotFound
			}
			return err
		}

		res := tx.
			Model(&models.Event{}).
			Where("id = ? AND available_seats >= ?", eventId, len(seatIds)).
			Update("available_seats", gorm.Expr("available_seats - ?", len(seatIds)))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSeatsUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scheduleHoldExpiry(booking.ID, expiresAt)
	go lib.InvalidateAvailability(context.Background(), eventId)
	return &booking, nil
}

// GetBooking loads a booking for its owner, with the seat ids it holds.
func GetBooking(bookingId uint, userId uint) (*models.Booking, []uint, error) {
	conn := db.GetDb()
	var b models.Booking
	err := conn.
		Where("id = ? AND user_id = ?", bookingId, userId).
		First(&b).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	seatIds, err := inventory.SeatIdsForBooking(conn, b.EventID, b.ID)
	if err != nil {
		log.Printf("Error loading seats for booking %d: %s\n", b.ID, err.Error())
	}
	return &b, seatIds, nil
}

// ListUserBookings returns the user's bookings, newest first.
func ListUserBookings(userId uint) ([]models.Booking, error) {
	conn := db.GetDb()
	var bookings []models.Booking
	err := conn.
		Where("user_id = ?", userId).
		Order("created_at desc").
		Find(&bookings).
		Error
	return bookings, err
}
