package inventory

import (
	"errors"
	"fmt"
	"log"
	"sbs/src/models"
	"sbs/src/types"

	"gorm.io/gorm"
)

var (
	// ErrSeatConflict means one or more requested seats were not AVAILABLE.
	// Callers must not assume which seats caused it.
	ErrSeatConflict = errors.New("one or more seats are not available")
	// ErrSeatNotFound means a seat id is not part of the event's seat map.
	ErrSeatNotFound = errors.New("seat does not belong to this event")
)

// Reserve transitions every seat in seatIds from AVAILABLE to RESERVED and
// tags it with bookingId. The update is a single conditional statement: if
// any seat in the batch is not AVAILABLE the row count comes up short, the
// error aborts the surrounding transaction and no seat changes. Partial
// reservation is never observable.
func Reserve(tx *gorm.DB, eventId uint, seatIds []uint, bookingId uint) (int64, error) {
	var known int64
	err := tx.
		Model(&models.EventSeat{}).
		Where("event_id = ? AND seat_id IN ?", eventId, seatIds).
		Count(&known).
		Error
	if err != nil {
		return 0, err
	}
	if known != int64(len(seatIds)) {
		return 0, fmt.Errorf("%w: event=%d", ErrSeatNotFound, eventId)
	}

	res := tx.
		Model(&models.EventSeat{}).
		Where("event_id = ? AND seat_id IN ? AND status = ? AND booking_id IS NULL", eventId, seatIds, types.SEAT_AVAILABLE).
		Updates(map[string]any{
			"status":     types.SEAT_RESERVED,
			"booking_id": bookingId,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected != int64(len(seatIds)) {
		return 0, ErrSeatConflict
	}
	return res.RowsAffected, nil
}

// Release returns every seat tagged with bookingId to AVAILABLE and clears
// the tag. Purchased seats are never touched by this path. Calling it again
// for the same booking is a no-op returning 0.
func Release(tx *gorm.DB, eventId uint, bookingId uint) (int64, error) {
	res := tx.
		Model(&models.EventSeat{}).
		Where("event_id = ? AND booking_id = ? AND status <> ?", eventId, bookingId, types.SEAT_PURCHASED).
		Updates(map[string]any{
			"status":     types.SEAT_AVAILABLE,
			"booking_id": nil,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// MarkPurchased moves every RESERVED seat tagged with bookingId to
// PURCHASED. If any tagged seat is not currently RESERVED the whole call
// fails and the surrounding transaction must roll back.
func MarkPurchased(tx *gorm.DB, eventId uint, bookingId uint) (int64, error) {
	var tagged int64
	err := tx.
		Model(&models.EventSeat{}).
		Where("event_id = ? AND booking_id = ?", eventId, bookingId).
		Count(&tagged).
		Error
	if err != nil {
		return 0, err
	}
	if tagged == 0 {
		return 0, nil
	}

	res := tx.
		Model(&models.EventSeat{}).
		Where("event_id = ? AND booking_id = ? AND status = ?", eventId, bookingId, types.SEAT_RESERVED).
		Update("status", types.SEAT_PURCHASED)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected != tagged {
		log.Printf("markPurchased mismatch for booking %d: tagged=%d updated=%d\n", bookingId, tagged, res.RowsAffected)
		return 0, ErrSeatConflict
	}
	return res.RowsAffected, nil
}

// CountAvailable is the read-only fast check against the seat map itself.
func CountAvailable(tx *gorm.DB, eventId uint) (int64, error) {
	var count int64
	err := tx.
		Model(&models.EventSeat{}).
		Where("event_id = ? AND status = ?", eventId, types.SEAT_AVAILABLE).
		Count(&count).
		Error
	return count, err
}

// SeatIdsForBooking lists the seats currently tagged with a booking.
func SeatIdsForBooking(tx *gorm.DB, eventId uint, bookingId uint) ([]uint, error) {
	var ids []uint
	err := tx.
		Model(&models.EventSeat{}).
		Where("event_id = ? AND booking_id = ?", eventId, bookingId).
		Pluck("seat_id", &ids).
		Error
	return ids, err
}
