package service

import (
	"testing"
	"time"

	"github.com/lunchorder/api/internal/database"
)

func TestEffectiveDate(t *testing.T) {
	cal := NewCalendar(utc8, 13, 15)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"morning", time.Date(2026, 10, 17, 9, 0, 0, 0, utc8), day(2026, 10, 17)},
		{"one minute before cutoff", time.Date(2026, 10, 17, 13, 14, 59, 0, utc8), day(2026, 10, 17)},
		{"at cutoff", time.Date(2026, 10, 17, 13, 15, 0, 0, utc8), day(2026, 10, 18)},
		{"evening", time.Date(2026, 10, 17, 22, 0, 0, 0, utc8), day(2026, 10, 18)},
		// 17:00 UTC on the 16th is 01:00 on the 17th in UTC+8.
		{"utc instant crosses midnight", time.Date(2026, 10, 16, 17, 0, 0, 0, time.UTC), day(2026, 10, 17)},
		{"month rollover", time.Date(2026, 10, 31, 14, 0, 0, 0, utc8), day(2026, 11, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.EffectiveDate(tt.now); !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", FormatDate(got), FormatDate(tt.want))
			}
		})
	}
}

func TestCheckWindow(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, utc8)
	cal := NewCalendar(utc8, 13, 15).WithClock(func() time.Time { return now })
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	if err := cal.CheckWindow(alice, day(2026, 10, 16), nil); err != ErrPastDate {
		t.Errorf("yesterday: got %v", err)
	}
	if err := cal.CheckWindow(alice, day(2026, 10, 17), &database.DailyConfig{Cutoff: &past}); err != ErrCutoffPassed {
		t.Errorf("past cutoff: got %v", err)
	}
	if err := cal.CheckWindow(alice, day(2026, 10, 17), &database.DailyConfig{Cutoff: &future}); err != nil {
		t.Errorf("before cutoff: got %v", err)
	}
	if err := cal.CheckWindow(coll, day(2026, 10, 16), nil); err != ErrPastDate {
		t.Errorf("collectors do not bypass the window: got %v", err)
	}
	if err := cal.CheckWindow(admin, day(2026, 10, 1), &database.DailyConfig{Cutoff: &past}); err != nil {
		t.Errorf("admin bypass: got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-10-17")
	if err != nil || !d.Equal(day(2026, 10, 17)) {
		t.Fatalf("got %v, %v", d, err)
	}
	if _, err := ParseDate("17/10/2026"); err == nil {
		t.Fatal("expected error")
	}
}
