package utils

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sbs/src/config"
	"sbs/src/db"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/types"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

// NewBookingReference builds the short opaque reference handed to clients,
// e.g. BK-3F9A01D2C4.
func NewBookingReference() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("BK-%s", raw[:10])
}

// CreateNewEvent creates the event and initializes its seat map: one
// event_seat row per physical seat in the venue, priced from the seat's
// base price times the event multiplier. The availability counter starts
// at the venue's seat count.
func CreateNewEvent(params *types.CreateEventRequestBody) (uint, error) {
	dateTime, err := time.Parse(config.TIME_PARSE_FORMAT, params.DateTime)
	if err != nil {
		log.Printf("Error parsing date_time: %s\n", err.Error())
		return 0, err
	}
	multiplier := params.PriceMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	var eventId uint
	conn := db.GetDb()
	err = conn.Transaction(func(tx *gorm.DB) error {
		var seats []models.Seat
		if err := tx.Where("venue_id = ?", params.VenueID).Find(&seats).Error; err != nil {
			return err
		}
		if len(seats) == 0 {
			return errors.New("venue has no seats")
		}

		event := models.Event{
			Title:          params.Title,
			Slug:           fmt.Sprintf("%s-%s", slug.Make(params.Title), uuid.NewString()[:8]),
			About:          &params.Description,
			VenueID:        params.VenueID,
			DateTime:       &dateTime,
			Status:         types.EVENT_OPEN,
			AvailableSeats: uint(len(seats)),
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		eventSeats := make([]models.EventSeat, 0, len(seats))
		for _, s := range seats {
			eventSeats = append(eventSeats, models.EventSeat{
				EventID: event.ID,
				SeatID:  s.ID,
				Status:  types.SEAT_AVAILABLE,
				Price:   s.BasePrice * multiplier,
			})
		}
		if err := tx.Create(&eventSeats).Error; err != nil {
			return err
		}
		eventId = event.ID
		return nil
	})
	if err != nil {
		log.Printf("CreateNewEvent failed: %s\n", err.Error())
		return 0, err
	}
	return eventId, nil
}

// GenerateTicketQR renders the booking reference as a QR image for the
// e-ticket and returns the file path.
func GenerateTicketQR(reference string) (string, error) {
	qrc, err := qrcode.New(reference)
	if err != nil {
		return "", err
	}
	tempdir := os.Getenv("TEMP_DIR")
	if tempdir == "" {
		tempdir = os.TempDir()
	}
	out := filepath.Join(tempdir, fmt.Sprintf("eticket_%s.jpeg", reference))
	if err := qrc.Save(out); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", out, err.Error())
		return "", err
	}
	return out, nil
}

// SendPurchaseConfirmation emails the e-ticket reference after settlement.
func SendPurchaseConfirmation(b *models.Booking, email string) error {
	if email == "" {
		return nil
	}
	body := fmt.Sprintf("Your booking %s is confirmed and paid. Quantity: %d. Total: %.2f %s.",
		b.Reference, b.Quantity, b.Price, strings.ToUpper(b.Currency))
	return lib.SendMail(&lib.SendMailInput{
		From:     os.Getenv("MAIL_FROM"),
		FromName: "Seat Booking Service",
		To:       []string{email},
		Subject:  fmt.Sprintf("Your tickets for booking %s", b.Reference),
		Body:     body,
	})
}
