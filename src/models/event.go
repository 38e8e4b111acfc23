package models

import (
	"sbs/src/types"
	"time"
)

type Event struct {
	ID       uint              `gorm:"primarykey" json:"id"`
	Title    string            `json:"title,omitempty"`
	Slug     string            `gorm:"uniqueIndex" json:"slug,omitempty"`
	About    *string           `json:"about,omitempty"`
	VenueID  uint              `json:"venue_id,omitempty"`
	DateTime *time.Time        `json:"date_time,omitempty"`
	Status   types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`

	// AvailableSeats is a denormalized counter kept in step with the
	// event_seats table inside the same transaction. The seat map is the
	// source of truth; this is only the fast-path check.
	AvailableSeats uint `json:"available_seats"`

	Venue Venue `json:"-"`

	types.Timestamps
}

// EventSeat is the per-event ledger row for one physical seat. All
// mutations go through the inventory package so the status transition
// rules hold on every path.
type EventSeat struct {
	EventID   uint             `gorm:"primaryKey" json:"event_id"`
	SeatID    uint             `gorm:"primaryKey" json:"seat_id"`
	Status    types.SeatStatus `gorm:"default:'AVAILABLE'" json:"status"`
	BookingID *uint            `json:"booking_id,omitempty"`
	Price     float32          `json:"price"`

	Seat Seat `json:"seat,omitempty"`
}
