package booking

import (
	"context"
	"log"
	"sbs/src/db"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/types"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newBookingDB(t *testing.T) *gorm.DB {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening the test database", err)
	}
	inner, err := conn.DB()
	require.Nil(t, err)
	inner.SetMaxOpenConns(1)

	err = conn.AutoMigrate(
		&models.User{},
		&models.Venue{},
		&models.Seat{},
		&models.Event{},
		&models.EventSeat{},
		&models.Booking{},
	)
	require.Nil(t, err)

	db.NewDB(conn)
	return conn
}

func seedBookableEvent(t *testing.T, conn *gorm.DB, eventId uint, seats int) []uint {
	event := models.Event{
		ID:             eventId,
		Title:          "test event",
		Slug:           "test-event",
		Status:         types.EVENT_OPEN,
		AvailableSeats: uint(seats),
	}
	require.Nil(t, conn.Create(&event).Error)

	seatIds := make([]uint, 0, seats)
	for i := 1; i <= seats; i++ {
		es := models.EventSeat{
			EventID: eventId,
			SeatID:  uint(i),
			Status:  types.SEAT_AVAILABLE,
			Price:   50,
		}
		require.Nil(t, conn.Create(&es).Error)
		seatIds = append(seatIds, uint(i))
	}
	return seatIds
}

func availableCounter(t *testing.T, conn *gorm.DB, eventId uint) uint {
	var event models.Event
	require.Nil(t, conn.Where("id = ?", eventId).First(&event).Error)
	return event.AvailableSeats
}

func TestCreateHold(t *testing.T) {
	conn := newBookingDB(t)
	seatIds := seedBookableEvent(t, conn, 1, 5)

	before := time.Now().UTC()
	b, err := CreateHold(context.Background(), 1, 1, seatIds[:3], 10*time.Minute)
	require.Nil(t, err)

	assert.Equal(t, types.BOOKING_TEMPORARY_HOLD, b.Status)
	assert.NotEmpty(t, b.Reference)
	assert.EqualValues(t, 3, b.Quantity)
	assert.EqualValues(t, 150, b.Price)
	require.NotNil(t, b.ExpiresAt)
	assert.WithinDuration(t, before.Add(10*time.Minute), *b.ExpiresAt, 5*time.Second)

	assert.EqualValues(t, 2, availableCounter(t, conn, 1))

	var reserved int64
	require.Nil(t, conn.
		Model(&models.EventSeat{}).
		Where("event_id = ? AND booking_id = ? AND status = ?", 1, b.ID, types.SEAT_RESERVED).
		Count(&reserved).
		Error)
	assert.EqualValues(t, 3, reserved)
}

func TestCreateHoldDefaultsDuration(t *testing.T) {
	conn := newBookingDB(t)
	seatIds := seedBookableEvent(t, conn, 1, 2)

	b, err := CreateHold(context.Background(), 1, 1, seatIds[:1], 0)
	require.Nil(t, err)
	require.NotNil(t, b.ExpiresAt)
	assert.True(t, b.ExpiresAt.After(time.Now().UTC()))
}

func TestCreateHoldSchedulesExpiry(t *testing.T) {
	conn := newBookingDB(t)
	seatIds := seedBookableEvent(t, conn, 1, 2)

	sched, err := lib.GetScheduler()
	require.Nil(t, err)
	before := len(sched.Jobs())

	_, err = CreateHold(context.Background(), 1, 1, seatIds[:1], time.Minute)
	require.Nil(t, err)

	assert.Greater(t, len(sched.Jobs()), before)
}

func TestCreateHoldEmptySeatSet(t *testing.T) {
	newBookingDB(t)

	_, err := CreateHold(context.Background(), 1, 1, nil, time.Minute)
	assert.ErrorIs(t, err, ErrEmptySeatSet)
}

func TestCreateHoldUnknownEvent(t *testing.T) {
	newBookingDB(t)

	_, err := CreateHold(context.Background(), 1, 99, []uint{1}, time.Minute)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateHoldUnknownSeat(t *testing.T) {
	conn := newBookingDB(t)
	seedBookableEvent(t, conn, 1, 2)

	_, err := CreateHold(context.Background(), 1, 1, []uint{1, 42}, time.Minute)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateHoldSeatConflict(t *testing.T) {
	conn := newBookingDB(t)
	seatIds := seedBookableEvent(t, conn, 1, 4)

	_, err := CreateHold(context.Background(), 1, 1, seatIds[:2], time.Minute)
	require.Nil(t, err)

	_, err = CreateHold(context.Background(), 2, 1, seatIds[1:3], time.Minute)
	assert.ErrorIs(t, err, ErrSeatsUnavailable)

	// The failed hold left nothing behind: one booking row, counter and
	// untouched seats exactly as the winner left them.
	var bookings int64
	require.Nil(t, conn.Model(&models.Booking{}).Count(&bookings).Error)
	assert.EqualValues(t, 1, bookings)
	assert.EqualValues(t, 2, availableCounter(t, conn, 1))

	var seat models.EventSeat
	require.Nil(t, conn.Where("event_id = ? AND seat_id = ?", 1, seatIds[2]).First(&seat).Error)
	assert.Equal(t, types.SEAT_AVAILABLE, seat.Status)
	assert.Nil(t, seat.BookingID)
}

func TestOverlappingHoldsSingleWinner(t *testing.T) {
	conn := newBookingDB(t)
	seatIds := seedBookableEvent(t, conn, 1, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = CreateHold(context.Background(), uint(i+1), 1, seatIds, time.Minute)
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSeatsUnavailable)
		}
	}
	assert.Equal(t, 1, winners)
	assert.EqualValues(t, 0, availableCounter(t, conn, 1))
}

func TestGetBookingScopedToOwner(t *testing.T) {
	conn := newBookingDB(t)
	seatIds := seedBookableEvent(t, conn, 1, 3)

	created, err := CreateHold(context.Background(), 7, 1, seatIds[:2], time.Minute)
	require.Nil(t, err)

	b, heldSeats, err := GetBooking(created.ID, 7)
	require.Nil(t, err)
	assert.Equal(t, created.Reference, b.Reference)
	assert.ElementsMatch(t, seatIds[:2], heldSeats)

	_, _, err = GetBooking(created.ID, 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUserBookings(t *testing.T) {
	conn := newBookingDB(t)
	seatIds := seedBookableEvent(t, conn, 1, 4)

	first, err := CreateHold(context.Background(), 3, 1, seatIds[:1], time.Minute)
	require.Nil(t, err)
	second, err := CreateHold(context.Background(), 3, 1, seatIds[1:2], time.Minute)
	require.Nil(t, err)
	_, err = CreateHold(context.Background(), 4, 1, seatIds[2:3], time.Minute)
	require.Nil(t, err)

	bookings, err := ListUserBookings(3)
	require.Nil(t, err)
	require.Len(t, bookings, 2)
	ids := []uint{bookings[0].ID, bookings[1].ID}
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)
}
