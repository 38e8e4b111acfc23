package boot

import (
	"log"
	"sbs/src/booking"
	"sbs/src/config"
	"sbs/src/db"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/utils"

	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	conn := db.GetDb()

	err := conn.AutoMigrate(
		&models.User{},
		&models.Venue{},
		&models.Seat{},
		&models.Event{},
		&models.EventSeat{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return conn
}

func InitBroker() {
	go lib.KafkaCreateTopics("bookings-expired", "bookings-cancelled", "bookings-purchased")
	go lib.KafkaConsumer("ticketing", []string{"bookings-purchased"}, handleBookingPurchased)
}

// handleBookingPurchased issues the e-ticket for a settled booking: QR
// image plus confirmation email. Both settlement paths (purchase endpoint
// and stripe webhook) publish on bookings-purchased, so ticketing happens
// here exactly once per booking.
func handleBookingPurchased(value []byte) {
	bookingId := uint(gjson.GetBytes(value, "id").Uint())
	if bookingId == 0 {
		log.Printf("[ticketing] Skipping message without booking id: %s\n", string(value))
		return
	}
	conn := db.GetDb()
	var b models.Booking
	if err := conn.Preload("User").Where("id = ?", bookingId).First(&b).Error; err != nil {
		log.Printf("[ticketing] Could not load booking %d: %s\n", bookingId, err.Error())
		return
	}
	if _, err := utils.GenerateTicketQR(b.Reference); err != nil {
		log.Printf("[ticketing] Error generating eticket for %s: %s\n", b.Reference, err.Error())
	}
	var email string
	if b.User != nil {
		email = b.User.Email
	}
	if err := utils.SendPurchaseConfirmation(&b, email); err != nil {
		log.Printf("[ticketing] Error sending confirmation for %s: %s\n", b.Reference, err.Error())
	}
}

// InitScheduler wires the expiry sweeper onto the shared scheduler and
// starts it.
func InitScheduler() {
	if err := booking.StartSweeper(config.SweepInterval); err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	lib.StartScheduler()
}
