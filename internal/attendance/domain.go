// Package attendance records daily check-in and check-out.
package attendance

import (
	"math"
	"time"
)

// Status of a day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusLeave   Status = "leave"
)

// HistoryLimit caps history listings.
const HistoryLimit = 30

// Record is one user's attendance for one day.
type Record struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"userId"`
	Date         string     `json:"date"`
	CheckInTime  *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
	Status       Status     `json:"status"`
	WorkHours    *float64   `json:"workHours,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// WorkHours returns the elapsed hours between in and out rounded to two decimals.
func WorkHours(in, out time.Time) float64 {
	h := out.Sub(in).Hours()
	if h < 0 {
		h = 0
	}
	return math.Round(h*100) / 100
}

// WorkDate is the calendar day a timestamp belongs to, in UTC.
func WorkDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckInRequest is the optional body of POST /attendance/check-in.
type CheckInRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
