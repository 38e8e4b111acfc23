package models

import (
	"log"
	"sbs/src/lib"
	"sbs/src/types"
	"time"
)

type Booking struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	Reference string              `gorm:"uniqueIndex" json:"reference,omitempty"`
	UserID    uint                `json:"user_id,omitempty"`
	EventID   uint                `json:"event_id,omitempty"`
	Status    types.BookingStatus `gorm:"default:'TEMPORARY_HOLD'" json:"status,omitempty"`
	Price     float32             `json:"price"`
	Quantity  uint                `json:"quantity,omitempty"`
	Currency  string              `json:"currency,omitempty"`

	// ExpiresAt is set iff the booking is a TEMPORARY_HOLD; every
	// transition out of the hold state clears it.
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	PurchasedAt  *time.Time `json:"purchased_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	PaymentDate  *time.Time `json:"payment_date,omitempty"`
	PaymentTxnID *string    `json:"payment_txn_id,omitempty"`

	Event *Event `json:"event,omitempty"`
	User  *User  `json:"-"`

	types.Timestamps
}

func BookingExpiredProducer(id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("bookings_expired_producer", "bookings-expired", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}

func BookingCancelledProducer(id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("bookings_cancelled_producer", "bookings-cancelled", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}

func BookingPurchasedProducer(id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("bookings_purchased_producer", "bookings-purchased", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}
