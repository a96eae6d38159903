package service

import (
	"math"
	"sort"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
)

// revenueDays is how many most recent days the revenue chart shows.
const revenueDays = 7

func servicesByID(services []domain.Service) map[string]domain.Service {
	m := make(map[string]domain.Service, len(services))
	for _, s := range services {
		m[s.ID] = s
	}
	return m
}

// FilterAppointments keeps the appointments of professionalID, or all of
// them when the filter is domain.FilterAll or empty.
func FilterAppointments(appts []domain.Appointment, professionalID string) []domain.Appointment {
	if professionalID == "" || professionalID == domain.FilterAll {
		return appts
	}
	out := make([]domain.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.ProfessionalID == professionalID {
			out = append(out, a)
		}
	}
	return out
}

// RevenueByDay sums service prices of non-cancelled appointments per date,
// ascending, keeping the last seven dates. Appointments whose service no
// longer exists are skipped.
func RevenueByDay(appts []domain.Appointment, services []domain.Service) []domain.DailyRevenue {
	byID := servicesByID(services)
	totals := make(map[string]float64)
	for _, a := range appts {
		if a.Status == domain.StatusCancelled {
			continue
		}
		svc, ok := byID[a.ServiceID]
		if !ok {
			continue
		}
		totals[a.Date] += svc.Price
	}

	out := make([]domain.DailyRevenue, 0, len(totals))
	for date, amount := range totals {
		out = append(out, domain.DailyRevenue{Date: date, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if len(out) > revenueDays {
		out = out[len(out)-revenueDays:]
	}
	return out
}

// ServicePopularity counts appointments of every status per service name in
// first-seen order. Missing services are counted under "Unknown".
func ServicePopularity(appts []domain.Appointment, services []domain.Service) []domain.ServiceCount {
	byID := servicesByID(services)
	index := make(map[string]int)
	out := []domain.ServiceCount{}
	for _, a := range appts {
		name := domain.UnknownServiceLabel
		if svc, ok := byID[a.ServiceID]; ok {
			name = svc.Name
		}
		i, seen := index[name]
		if !seen {
			i = len(out)
			index[name] = i
			out = append(out, domain.ServiceCount{Name: name})
		}
		out[i].Count++
	}
	return out
}

// TotalRevenue sums service prices of non-cancelled appointments. Missing
// services count as zero.
func TotalRevenue(appts []domain.Appointment, services []domain.Service) float64 {
	byID := servicesByID(services)
	total := 0.0
	for _, a := range appts {
		if a.Status == domain.StatusCancelled {
			continue
		}
		total += byID[a.ServiceID].Price
	}
	return total
}

// CompletionRate is the rounded percentage of confirmed or completed
// appointments, 0 for an empty list.
func CompletionRate(appts []domain.Appointment) float64 {
	if len(appts) == 0 {
		return 0
	}
	done := 0
	for _, a := range appts {
		if a.Status == domain.StatusConfirmed || a.Status == domain.StatusCompleted {
			done++
		}
	}
	return math.Round(float64(done) / float64(len(appts)) * 100)
}

// InPeriod reports whether date (YYYY-MM-DD) falls in period relative to now.
// Dates are compared as calendar days in now's location; week covers the
// seven days before today plus today.
func InPeriod(date string, period domain.Period, now time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case domain.PeriodDay:
		return d.Equal(today)
	case domain.PeriodWeek:
		return !d.Before(today.AddDate(0, 0, -7)) && !d.After(today)
	case domain.PeriodMonth:
		return d.Year() == today.Year() && d.Month() == today.Month()
	case domain.PeriodYear:
		return d.Year() == today.Year()
	}
	return true
}

// ProfessionalPerformance totals confirmed appointments inside period for
// each of professionals, zero rows included, sorted by total descending.
// Ties keep the professionals' order.
func ProfessionalPerformance(
	appts []domain.Appointment,
	services []domain.Service,
	professionals []domain.Professional,
	period domain.Period,
	now time.Time,
) []domain.ProfessionalPerformance {
	byID := servicesByID(services)
	rows := make([]domain.ProfessionalPerformance, 0, len(professionals))
	index := make(map[string]int, len(professionals))
	for i, p := range professionals {
		index[p.ID] = i
		rows = append(rows, domain.ProfessionalPerformance{ID: p.ID, Name: p.Name, Role: p.Role})
	}

	for _, a := range appts {
		i, ok := index[a.ProfessionalID]
		if !ok || a.Status != domain.StatusConfirmed || !InPeriod(a.Date, period, now) {
			continue
		}
		rows[i].Count++
		rows[i].Total += byID[a.ServiceID].Price
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows
}
