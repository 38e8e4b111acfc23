package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

// SeatStatus is the per-event booking state of a single seat. Transitions
// are AVAILABLE -> RESERVED -> PURCHASED, with RESERVED -> AVAILABLE on
// release. A seat never moves RESERVED -> RESERVED without going through
// AVAILABLE in between.
type SeatStatus string

const (
	SEAT_AVAILABLE SeatStatus = "AVAILABLE"
	SEAT_RESERVED  SeatStatus = "RESERVED"
	SEAT_PURCHASED SeatStatus = "PURCHASED"
)

// BookingStatus is the lifecycle state of a booking. PURCHASED, EXPIRED and
// CANCELLED are terminal.
type BookingStatus string

const (
	BOOKING_TEMPORARY_HOLD BookingStatus = "TEMPORARY_HOLD"
	BOOKING_CONFIRMED      BookingStatus = "CONFIRMED_BOOKING"
	BOOKING_PURCHASED      BookingStatus = "PURCHASED"
	BOOKING_EXPIRED        BookingStatus = "EXPIRED"
	BOOKING_CANCELLED      BookingStatus = "CANCELLED"
)

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_OPEN      EventStatus = "open"
	EVENT_CLOSED    EventStatus = "closed"
	EVENT_COMPLETED EventStatus = "completed"
	EVENT_CANCELED  EventStatus = "canceled"
)

type PaymentStatus string

const (
	PAYMENT_APPROVED PaymentStatus = "approved"
	PAYMENT_DECLINED PaymentStatus = "declined"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateVenueRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location,omitempty"`
}

type VenueSeat struct {
	Section    string  `json:"section,omitempty"`
	RowNumber  uint    `json:"row" binding:"required"`
	SeatNumber uint    `json:"seat" binding:"required"`
	BasePrice  float32 `json:"base_price" binding:"required"`
}

type CreateSeatsRequestBody struct {
	Seats []VenueSeat `json:"seats" binding:"required,min=1,dive"`
}

type CreateEventRequestBody struct {
	Title           string  `json:"title" binding:"required"`
	Description     string  `json:"description,omitempty"`
	VenueID         uint    `json:"venue" binding:"required"`
	DateTime        string  `json:"date_time" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	PriceMultiplier float32 `json:"price_multiplier,omitempty"`
}

type CreateHoldRequestBody struct {
	EventID     uint   `json:"event" binding:"required"`
	SeatIDs     []uint `json:"seats" binding:"required,min=1,unique"`
	HoldMinutes uint   `json:"hold_minutes,omitempty" binding:"omitempty,holdwindow"`
}

type PurchaseRequestBody struct {
	PaymentMethod string `json:"payment_method,omitempty"`
}
