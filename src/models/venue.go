package models

import "sbs/src/types"

type Venue struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`

	Seats []Seat `json:"seats,omitempty"`

	types.Timestamps
}

// Seat is a physical seat in a venue. Rows are immutable once created and
// are never deleted while an event_seat row still references them.
type Seat struct {
	ID         uint    `gorm:"primarykey" json:"id"`
	VenueID    uint    `json:"venue_id,omitempty"`
	Section    string  `json:"section,omitempty"`
	RowNumber  uint    `json:"row"`
	SeatNumber uint    `json:"seat"`
	BasePrice  float32 `json:"base_price"`

	types.Timestamps
}
