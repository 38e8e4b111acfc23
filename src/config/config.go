package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// DefaultHoldDuration is how long a temporary hold keeps its seats before
// the sweeper is allowed to release them.
const DefaultHoldDuration = 15 * time.Minute

const MaxHoldDuration = 24 * time.Hour

// SweepInterval is how often the expiry sweeper scans for lapsed holds.
const SweepInterval = 30 * time.Second

var API_ENV = os.Getenv("API_ENV")

func GetHoldDuration() time.Duration {
	v := os.Getenv("HOLD_DURATION_MINUTES")
	if v == "" {
		return DefaultHoldDuration
	}
	mins, err := strconv.Atoi(v)
	if err != nil || mins <= 0 {
		return DefaultHoldDuration
	}
	d := time.Duration(mins) * time.Minute
	if d > MaxHoldDuration {
		return MaxHoldDuration
	}
	return d
}
