package booking

import (
	"context"
	"errors"
	"sbs/src/db"
	"sbs/src/inventory"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/types"
	"time"

	"gorm.io/gorm"
)

// Every transition below is a conditional update on the booking row: the
// WHERE clause carries the legal from-states, so two racing transitions on
// the same booking can never both succeed. The loser sees zero rows
// affected and gets ErrInvalidTransition. The sweeper and the cancel
// endpoint share this exact path.

// Confirm moves a TEMPORARY_HOLD to CONFIRMED_BOOKING and clears the
// expiry deadline.
func Confirm(ctx context.Context, bookingId uint, userId uint) (*models.Booking, error) {
	var confirmed models.Booking
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND user_id = ? AND status = ?", bookingId, userId, types.BOOKING_TEMPORARY_HOLD).
			Updates(map[string]any{
				"status":       types.BOOKING_CONFIRMED,
				"confirmed_at": now,
				"expires_at":   nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return classifyNoRows(tx, bookingId, &userId)
		}
		return tx.Where("id = ?", bookingId).First(&confirmed).Error
	})
	if err != nil {
		return nil, err
	}
	return &confirmed, nil
}

// Cancel is the user-initiated escape hatch, legal from TEMPORARY_HOLD and
// CONFIRMED_BOOKING. Seats go back to AVAILABLE and the counter is
// restored by however many were actually released.
func Cancel(ctx context.Context, bookingId uint, userId uint) (*models.Booking, error) {
	var cancelled models.Booking
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND user_id = ? AND status IN ?", bookingId, userId, []types.BookingStatus{types.BOOKING_TEMPORARY_HOLD, types.BOOKING_CONFIRMED}).
			Updates(map[string]any{
				"status":       types.BOOKING_CANCELLED,
				"cancelled_at": now,
				"expires_at":   nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return classifyNoRows(tx, bookingId, &userId)
		}
		if err := tx.Where("id = ?", bookingId).First(&cancelled).Error; err != nil {
			return err
		}
		return releaseSeats(tx, cancelled.EventID, cancelled.ID)
	})
	if err != nil {
		return nil, err
	}

	go models.BookingCancelledProducer(cancelled.ID, map[string]any{
		"id":        cancelled.ID,
		"reference": cancelled.Reference,
		"event":     cancelled.EventID,
		"status":    cancelled.Status,
	})
	go lib.InvalidateAvailability(context.Background(), cancelled.EventID)
	return &cancelled, nil
}

// Expire is the sweeper's transition. It only fires once the deadline has
// actually passed; a hold that was confirmed or cancelled in the meantime
// loses the race here and nothing changes.
func Expire(ctx context.Context, bookingId uint, now time.Time) error {
	var expired models.Booking
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ? AND expires_at <= ?", bookingId, types.BOOKING_TEMPORARY_HOLD, now).
			Updates(map[string]any{
				"status":     types.BOOKING_EXPIRED,
				"expires_at": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return classifyNoRows(tx, bookingId, nil)
		}
		if err := tx.Where("id = ?", bookingId).First(&expired).Error; err != nil {
			return err
		}
		return releaseSeats(tx, expired.EventID, expired.ID)
	})
	if err != nil {
		return err
	}

	go models.BookingExpiredProducer(expired.ID, map[string]any{
		"id":        expired.ID,
		"reference": expired.Reference,
		"event":     expired.EventID,
		"status":    expired.Status,
	})
	go lib.InvalidateAvailability(context.Background(), expired.EventID)
	return nil
}

// Purchase settles a CONFIRMED_BOOKING after the gateway approved the
// charge. The seats flip RESERVED -> PURCHASED; the availability counter
// does not move because reserved seats were already off the market.
func Purchase(ctx context.Context, bookingId uint, txnId string) (*models.Booking, error) {
	var purchased models.Booking
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", bookingId, types.BOOKING_CONFIRMED).
			Updates(map[string]any{
				"status":         types.BOOKING_PURCHASED,
				"purchased_at":   now,
				"payment_date":   now,
				"payment_txn_id": txnId,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return classifyNoRows(tx, bookingId, nil)
		}
		if err := tx.Where("id = ?", bookingId).First(&purchased).Error; err != nil {
			return err
		}
		marked, err := inventory.MarkPurchased(tx, purchased.EventID, purchased.ID)
		if err != nil {
			return err
		}
		if marked != int64(purchased.Quantity) {
			return ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	go models.BookingPurchasedProducer(purchased.ID, map[string]any{
		"id":        purchased.ID,
		"reference": purchased.Reference,
		"event":     purchased.EventID,
		"status":    purchased.Status,
		"txn":       txnId,
	})
	return &purchased, nil
}

// PaymentFailed is the decline path from the gateway: a CONFIRMED_BOOKING
// is cancelled and its seats come back.
func PaymentFailed(ctx context.Context, bookingId uint) (*models.Booking, error) {
	var cancelled models.Booking
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", bookingId, types.BOOKING_CONFIRMED).
			Updates(map[string]any{
				"status":       types.BOOKING_CANCELLED,
				"cancelled_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return classifyNoRows(tx, bookingId, nil)
		}
		if err := tx.Where("id = ?", bookingId).First(&cancelled).Error; err != nil {
			return err
		}
		return releaseSeats(tx, cancelled.EventID, cancelled.ID)
	})
	if err != nil {
		return nil, err
	}

	go models.BookingCancelledProducer(cancelled.ID, map[string]any{
		"id":        cancelled.ID,
		"reference": cancelled.Reference,
		"event":     cancelled.EventID,
		"status":    cancelled.Status,
		"reason":    "payment_declined",
	})
	go lib.InvalidateAvailability(context.Background(), cancelled.EventID)
	return &cancelled, nil
}

func releaseSeats(tx *gorm.DB, eventId uint, bookingId uint) error {
	released, err := inventory.Release(tx, eventId, bookingId)
	if err != nil {
		return err
	}
	if released == 0 {
		return nil
	}
	return tx.
		Model(&models.Event{}).
		Where("id = ?", eventId).
		Update("available_seats", gorm.Expr("available_seats + ?", released)).
		Error
}

// classifyNoRows tells a missing booking apart from a guard rejection after
// a transition matched nothing.
func classifyNoRows(tx *gorm.DB, bookingId uint, userId *uint) error {
	q := tx.Where("id = ?", bookingId)
	if userId != nil {
		q = q.Where("user_id = ?", *userId)
	}
	var b models.Booking
	if err := q.First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return ErrInvalidTransition
}
