package boot

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sbs/src/db"
	"sbs/src/models"
	"sbs/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newBootDB(t *testing.T) *gorm.DB {
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

func TestHandleBookingPurchasedIssuesTicket(t *testing.T) {
	conn := newBootDB(t)
	dir := t.TempDir()
	t.Setenv("TEMP_DIR", dir)

	user := models.User{Name: "Test User"}
	require.Nil(t, conn.Create(&user).Error)
	b := models.Booking{
		Reference: "BK-TICKET0001",
		UserID:    user.ID,
		EventID:   1,
		Status:    types.BOOKING_PURCHASED,
		Quantity:  1,
		Currency:  "usd",
	}
	require.Nil(t, conn.Create(&b).Error)

	payload, err := json.Marshal(map[string]any{"id": b.ID, "reference": b.Reference})
	require.Nil(t, err)
	handleBookingPurchased(payload)

	info, err := os.Stat(filepath.Join(dir, fmt.Sprintf("eticket_%s.jpeg", b.Reference)))
	require.Nil(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestHandleBookingPurchasedSkipsBadPayload(t *testing.T) {
	newBootDB(t)
	dir := t.TempDir()
	t.Setenv("TEMP_DIR", dir)

	handleBookingPurchased([]byte(`{}`))
	handleBookingPurchased([]byte(`not json`))
	handleBookingPurchased([]byte(`{"id": 9999}`))

	entries, err := os.ReadDir(dir)
	require.Nil(t, err)
	assert.Empty(t, entries)
}
