package timeutil

import (
	"time"
)

// Factory is the plant's local timezone (EET/EEST).
var Factory *time.Location

func init() {
	var err error
	Factory, err = time.LoadLocation("Europe/Bucharest")
	if err != nil {
		// Fallback: fixed EET if the tz database is unavailable
		Factory = time.FixedZone("EET", 2*60*60)
	}
}

// Now returns the current time in the factory timezone.
func Now() time.Time {
	return time.Now().In(Factory)
}

// ToFactory converts any time to the factory timezone.
func ToFactory(t time.Time) time.Time {
	return t.In(Factory)
}

// StartOfDay returns 00:00:00 factory time for the given time.
func StartOfDay(t time.Time) time.Time {
	ft := t.In(Factory)
	return time.Date(ft.Year(), ft.Month(), ft.Day(), 0, 0, 0, 0, Factory)
}

// Common layouts for display formatting
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 15:04"
)
