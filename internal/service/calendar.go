package service

import (
	"fmt"
	"time"

	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
)

// DateLayout is the wire format of ordering dates.
const DateLayout = time.DateOnly

// Calendar resolves ordering dates in the fixed civil timezone the office
// runs on. Dates are represented as midnight UTC of the civil date, the
// same shape the store persists.
type Calendar struct {
	loc          *time.Location
	cutoffHour   int
	cutoffMinute int
	now          func() time.Time
}

// NewCalendar creates a Calendar. After cutoffHour:cutoffMinute local time the
// default ordering date rolls over to tomorrow.
func NewCalendar(loc *time.Location, cutoffHour, cutoffMinute int) *Calendar {
	return &Calendar{loc: loc, cutoffHour: cutoffHour, cutoffMinute: cutoffMinute, now: time.Now}
}

// WithClock returns a copy of c that reads the current time from now.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Calendar) Now() time.Time {
	return c.now()
}

// EffectiveDate returns the date new orders default to at instant t.
func (c *Calendar) EffectiveDate(t time.Time) time.Time {
	local := t.In(c.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	minutes := local.Hour()*60 + local.Minute()
	if minutes >= c.cutoffHour*60+c.cutoffMinute {
		return day.AddDate(0, 0, 1)
	}
	return day
}

// Today is EffectiveDate at the current instant.
func (c *Calendar) Today() time.Time {
	return c.EffectiveDate(c.now())
}

// CheckWindow reports whether p may place or edit an order on date.
// Admins are never blocked.
func (c *Calendar) CheckWindow(p auth.Principal, date time.Time, day *database.DailyConfig) error {
	if p.Role.IsAdmin() {
		return nil
	}
	if date.Before(c.Today()) {
		return ErrPastDate
	}
	if day != nil && day.Cutoff != nil && c.now().After(*day.Cutoff) {
		return ErrCutoffPassed
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date into the canonical midnight-UTC form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
