package booking

import (
	"context"
	"errors"
	"log"
	"sbs/src/config"
	"sbs/src/db"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/types"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Sweep releases every hold whose deadline has passed and returns how many
// bookings it expired. Individual failures are logged and skipped so one
// bad row cannot stall the rest of the scan. A hold that a user confirms
// or cancels mid-sweep simply loses here via the transition guard.
func Sweep(now time.Time) int {
	conn := db.GetDb()
	var ids []uint
	err := conn.
		Model(&models.Booking{}).
		Where("status = ? AND expires_at < ?", types.BOOKING_TEMPORARY_HOLD, now).
		Pluck("id", &ids).
		Error
	if err != nil {
		log.Printf("[sweeper] Error scanning for expired holds: %s\n", err.Error())
		return 0
	}

	processed := 0
	for _, id := range ids {
		if err := Expire(context.Background(), id, now); err != nil {
			if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNotFound) {
				continue
			}
			log.Printf("[sweeper] Error expiring booking %d: %s\n", id, err.Error())
			continue
		}
		processed++
	}
	if processed > 0 {
		log.Printf("[sweeper] Expired %d hold(s)\n", processed)
	}
	return processed
}

// scheduleHoldExpiry queues a one-shot expiry job at the hold's deadline so
// seats come back the moment the hold lapses. Best effort: the periodic
// sweep still catches holds whose job was lost to a restart, and a hold
// confirmed or cancelled in the meantime just loses the transition guard.
func scheduleHoldExpiry(bookingId uint, at time.Time) {
	_, err := lib.CreateOneTimeCronJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(func() {
			if err := Expire(context.Background(), bookingId, time.Now().UTC()); err != nil {
				if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNotFound) {
					return
				}
				log.Printf("Error expiring booking %d: %s\n", bookingId, err.Error())
			}
		}),
	)
	if err != nil {
		log.Printf("Could not schedule expiry for booking %d: %s\n", bookingId, err.Error())
	}
}

// StartSweeper schedules the periodic sweep on the shared scheduler.
func StartSweeper(interval time.Duration) error {
	if interval <= 0 {
		interval = config.SweepInterval
	}
	id, err := lib.CreateCronJob(func() {
		Sweep(time.Now().UTC())
	}, interval)
	if err != nil {
		log.Printf("Error scheduling expiry sweeper: %s\n", err.Error())
		return err
	}
	log.Printf("Expiry sweeper scheduled every %s (job %s)\n", interval, *id)
	return nil
}
