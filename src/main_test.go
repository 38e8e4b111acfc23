package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sbs/src/config"
	"sbs/src/db"
	"sbs/src/lib"
	"sbs/src/middlewares"
	"sbs/src/models"
	"sbs/src/types"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB     *gorm.DB
	Router *gin.Engine
	UserID uint
}

func (s *TestSuite) SetupSuite() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", eventDateTimeValidatorFunc)
		v.RegisterValidation("holdwindow", holdWindowValidatorFunc)
	}

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening the test database", err)
	}
	inner, err := conn.DB()
	if err != nil {
		log.Fatalf("Error accessing inner db instance: %s", err.Error())
	}
	inner.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(
		&models.User{},
		&models.Venue{},
		&models.Seat{},
		&models.Event{},
		&models.EventSeat{},
		&models.Booking{},
	); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	db.NewDB(conn)
	s.DB = conn

	lib.NewPaymentGateway(&lib.LocalGateway{})

	user := models.User{
		Name:  "Test User",
		Email: "someone@example.com",
	}
	if err := conn.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	}); err != nil {
		log.Fatalf("Could not create user due to error: %s\n", err.Error())
	}
	s.UserID = user.ID

	router := setupRouter()
	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.Identity)
	{
		authorized = venueHandlers(authorized)
		authorized = eventHandlers(authorized)
		authorized = bookingHandlers(authorized)
		authorized = paymentHandlers(authorized)
	}
	s.Router = router
}

func (s *TestSuite) TearDownSuite() {
	lib.StopScheduler()
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

func (s *TestSuite) request(method string, target string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		assert.Nil(s.T(), err)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", fmt.Sprint(s.UserID))
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) TestPingRoute() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	s.Router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestIdentityRequired() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
	s.Router.ServeHTTP(w, req)
	assert.Equal(s.T(), 401, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/bookings", nil)
	req.Header.Set("X-User-ID", "9999")
	s.Router.ServeHTTP(w, req)
	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestHoldValidation() {
	w := s.request("POST", "/api/v1/bookings", map[string]any{
		"event": 1,
	})
	assert.Equal(s.T(), 400, w.Code)

	w = s.request("POST", "/api/v1/bookings", map[string]any{
		"event": 1,
		"seats": []uint{1, 1},
	})
	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestBookingJourney() {
	var venueId, eventId, bookingId int64
	var seatIds []uint

	s.Run("Should create venue with seats", func() {
		w := s.request("POST", "/api/v1/venues", types.CreateVenueRequestBody{
			Name:     "Main Hall",
			Location: "Somewhere",
		})
		assert.Equal(s.T(), 201, w.Code)
		venueId = gjson.Get(w.Body.String(), "id").Int()
		assert.Greater(s.T(), venueId, int64(0))

		seats := make([]types.VenueSeat, 0, 4)
		for i := 1; i <= 4; i++ {
			seats = append(seats, types.VenueSeat{
				Section:    "A",
				RowNumber:  1,
				SeatNumber: uint(i),
				BasePrice:  40,
			})
		}
		w = s.request("POST", fmt.Sprintf("/api/v1/venues/%d/seats", venueId), types.CreateSeatsRequestBody{Seats: seats})
		assert.Equal(s.T(), 201, w.Code)
		assert.EqualValues(s.T(), 4, gjson.Get(w.Body.String(), "count").Int())
	})

	s.Run("Should create event and initialize its seat map", func() {
		dateTime := time.Now().Add(48 * time.Hour).Format(config.TIME_PARSE_FORMAT)
		w := s.request("POST", "/api/v1/events", types.CreateEventRequestBody{
			Title:           "Launch Night",
			Description:     "test event",
			VenueID:         uint(venueId),
			DateTime:        dateTime,
			PriceMultiplier: 2,
		})
		assert.Equal(s.T(), 201, w.Code)
		eventId = gjson.Get(w.Body.String(), "id").Int()
		assert.Greater(s.T(), eventId, int64(0))

		w = s.request("GET", fmt.Sprintf("/api/v1/events/%d/seats", eventId), nil)
		assert.Equal(s.T(), 200, w.Code)
		assert.EqualValues(s.T(), 4, gjson.Get(w.Body.String(), "count").Int())
		for _, row := range gjson.Get(w.Body.String(), "data").Array() {
			seatIds = append(seatIds, uint(row.Get("seat_id").Int()))
		}

		w = s.request("GET", fmt.Sprintf("/api/v1/events/%d/availability", eventId), nil)
		assert.Equal(s.T(), 200, w.Code)
		assert.EqualValues(s.T(), 4, gjson.Get(w.Body.String(), "available").Int())
	})

	s.Run("Should hold seats and reject an overlapping hold", func() {
		w := s.request("POST", "/api/v1/bookings", map[string]any{
			"event":        eventId,
			"seats":        seatIds[:2],
			"hold_minutes": 30,
		})
		assert.Equal(s.T(), 201, w.Code)
		bookingId = gjson.Get(w.Body.String(), "data.id").Int()
		assert.Greater(s.T(), bookingId, int64(0))
		assert.Equal(s.T(), "TEMPORARY_HOLD", gjson.Get(w.Body.String(), "data.status").String())
		assert.EqualValues(s.T(), 160, gjson.Get(w.Body.String(), "data.price").Num)

		w = s.request("POST", "/api/v1/bookings", map[string]any{
			"event": eventId,
			"seats": seatIds[1:3],
		})
		assert.Equal(s.T(), 409, w.Code)

		w = s.request("GET", fmt.Sprintf("/api/v1/events/%d/availability", eventId), nil)
		assert.Equal(s.T(), 200, w.Code)
		assert.EqualValues(s.T(), 2, gjson.Get(w.Body.String(), "available").Int())
	})

	s.Run("Should return the booking with its seats", func() {
		w := s.request("GET", fmt.Sprintf("/api/v1/bookings/%d", bookingId), nil)
		assert.Equal(s.T(), 200, w.Code)
		held := gjson.Get(w.Body.String(), "seat_ids").Array()
		assert.Len(s.T(), held, 2)
	})

	s.Run("Should confirm and settle the booking", func() {
		w := s.request("PUT", fmt.Sprintf("/api/v1/bookings/%d/confirm", bookingId), nil)
		assert.Equal(s.T(), 200, w.Code)
		assert.Equal(s.T(), "CONFIRMED_BOOKING", gjson.Get(w.Body.String(), "data.status").String())

		w = s.request("POST", fmt.Sprintf("/api/v1/bookings/%d/purchase", bookingId), types.PurchaseRequestBody{})
		assert.Equal(s.T(), 200, w.Code)
		assert.Equal(s.T(), "PURCHASED", gjson.Get(w.Body.String(), "data.status").String())
		assert.NotEmpty(s.T(), gjson.Get(w.Body.String(), "txn").String())
	})

	s.Run("Should reject any transition after purchase", func() {
		w := s.request("PUT", fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingId), nil)
		assert.Equal(s.T(), 409, w.Code)

		w = s.request("POST", fmt.Sprintf("/api/v1/bookings/%d/purchase", bookingId), types.PurchaseRequestBody{})
		assert.Equal(s.T(), 409, w.Code)

		// Purchased seats stay off the market.
		w = s.request("GET", fmt.Sprintf("/api/v1/events/%d/availability", eventId), nil)
		assert.Equal(s.T(), 200, w.Code)
		assert.EqualValues(s.T(), 2, gjson.Get(w.Body.String(), "available").Int())
	})
}

func (s *TestSuite) TestPurchaseFromHold() {
	event := models.Event{
		Title:          "Encore Night",
		Slug:           "encore-night",
		Status:         types.EVENT_OPEN,
		AvailableSeats: 2,
	}
	assert.Nil(s.T(), s.DB.Create(&event).Error)
	seatIds := []uint{501, 502}
	for _, id := range seatIds {
		es := models.EventSeat{
			EventID: event.ID,
			SeatID:  id,
			Status:  types.SEAT_AVAILABLE,
			Price:   30,
		}
		assert.Nil(s.T(), s.DB.Create(&es).Error)
	}

	w := s.request("POST", "/api/v1/bookings", map[string]any{
		"event": event.ID,
		"seats": seatIds,
	})
	assert.Equal(s.T(), 201, w.Code)
	bookingId := gjson.Get(w.Body.String(), "data.id").Int()
	assert.Equal(s.T(), "TEMPORARY_HOLD", gjson.Get(w.Body.String(), "data.status").String())

	// Purchasing a hold confirms it on the way through.
	w = s.request("POST", fmt.Sprintf("/api/v1/bookings/%d/purchase", bookingId), types.PurchaseRequestBody{})
	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), "PURCHASED", gjson.Get(w.Body.String(), "data.status").String())
	assert.True(s.T(), gjson.Get(w.Body.String(), "data.confirmed_at").Exists())
	assert.NotEmpty(s.T(), gjson.Get(w.Body.String(), "txn").String())
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
