package service

import (
	"fmt"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
)

// DateLayout is the wire format of appointment dates.
const DateLayout = "2006-01-02"

// CandidateWindowDays is how far ahead customers may book, today included.
const CandidateWindowDays = 14

// DefaultBusinessHours are 09:00–19:00, Tuesday to Saturday.
func DefaultBusinessHours() domain.BusinessHours {
	return domain.BusinessHours{
		StartHour: 9,
		EndHour:   19,
		OpenDays:  []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	}
}

// CandidateDates lists, in ascending order, the open days among the
// windowDays calendar days starting at today.
func CandidateDates(today time.Time, hours domain.BusinessHours, windowDays int) []string {
	dates := make([]string, 0, windowDays)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	for i := 0; i < windowDays; i++ {
		d := day.AddDate(0, 0, i)
		if hours.IsOpen(d.Weekday()) {
			dates = append(dates, d.Format(DateLayout))
		}
	}
	return dates
}

// GenerateSlots returns every half-hour slot of the business day for
// professionalID on date. A slot is unavailable exactly when a non-cancelled
// appointment holds the same professional, date and time. An empty
// professional, an unparseable date or a closed weekday yields no slots.
func GenerateSlots(date, professionalID string, hours domain.BusinessHours, appointments []domain.Appointment) []domain.TimeSlot {
	slots := []domain.TimeSlot{}
	if professionalID == "" || date == "" {
		return slots
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil || !hours.IsOpen(d.Weekday()) {
		return slots
	}

	held := make(map[string]bool)
	for _, a := range appointments {
		if a.ProfessionalID == professionalID && a.Date == date && a.Status != domain.StatusCancelled {
			held[a.Time] = true
		}
	}

	for hour := hours.StartHour; hour < hours.EndHour; hour++ {
		for _, minute := range []int{0, 30} {
			clock := fmt.Sprintf("%02d:%02d", hour, minute)
			slots = append(slots, domain.TimeSlot{Time: clock, Available: !held[clock]})
		}
	}
	return slots
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}
