package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/cache"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	svcHundred = domain.Service{ID: "s100", Name: "Escova", Price: 100}
	svcFifty   = domain.Service{ID: "s50", Name: "Sobrancelha", Price: 50}
	catalogFix = []domain.Service{svcHundred, svcFifty}
)

func TestTotalRevenue_ExcludesCancelled(t *testing.T) {
	appts := []domain.Appointment{
		appointment("a", "s100", "1", "2026-10-20", "10:00", domain.StatusConfirmed),
		appointment("b", "s50", "1", "2026-10-20", "11:00", domain.StatusCancelled),
	}

	assert.Equal(t, 100.0, service.TotalRevenue(appts, catalogFix))

	daily := service.RevenueByDay(appts, catalogFix)
	require.Len(t, daily, 1)
	assert.Equal(t, domain.DailyRevenue{Date: "2026-10-20", Amount: 100}, daily[0])
}

func TestTotalRevenue_MissingServiceCountsZero(t *testing.T) {
	appts := []domain.Appointment{
		appointment("a", "gone", "1", "2026-10-20", "10:00", domain.StatusConfirmed),
		appointment("b", "s50", "1", "2026-10-20", "11:00", domain.StatusCompleted),
	}
	assert.Equal(t, 50.0, service.TotalRevenue(appts, catalogFix))
}

func TestRevenueByDay_LastSevenAscending(t *testing.T) {
	var appts []domain.Appointment
	for day := 1; day <= 9; day++ {
		date := time.Date(2026, time.October, day, 0, 0, 0, 0, time.UTC).Format(service.DateLayout)
		appts = append(appts, appointment(date, "s100", "1", date, "10:00", domain.StatusConfirmed))
	}
	// unknown service: no contribution and no bar
	appts = append(appts, appointment("x", "gone", "1", "2026-10-30", "10:00", domain.StatusConfirmed))

	daily := service.RevenueByDay(appts, catalogFix)
	require.Len(t, daily, 7)
	assert.Equal(t, "2026-10-03", daily[0].Date)
	assert.Equal(t, "2026-10-09", daily[6].Date)
}

func TestServicePopularity_FirstSeenOrderAndUnknown(t *testing.T) {
	appts := []domain.Appointment{
		appointment("a", "s50", "1", "2026-10-20", "10:00", domain.StatusConfirmed),
		appointment("b", "gone", "1", "2026-10-20", "11:00", domain.StatusConfirmed),
		appointment("c", "s50", "1", "2026-10-21", "10:00", domain.StatusCancelled),
		appointment("d", "s100", "1", "2026-10-21", "11:00", domain.StatusPending),
	}

	got := service.ServicePopularity(appts, catalogFix)
	assert.Equal(t, []domain.ServiceCount{
		{Name: "Sobrancelha", Count: 2},
		{Name: domain.UnknownServiceLabel, Count: 1},
		{Name: "Escova", Count: 1},
	}, got)
}

func TestCompletionRate(t *testing.T) {
	assert.Zero(t, service.CompletionRate(nil))

	appts := []domain.Appointment{
		appointment("a", "s100", "1", "2026-10-20", "10:00", domain.StatusConfirmed),
		appointment("b", "s100", "1", "2026-10-20", "11:00", domain.StatusCompleted),
		appointment("c", "s100", "1", "2026-10-20", "12:00", domain.StatusPending),
	}
	assert.Equal(t, 67.0, service.CompletionRate(appts))
}

func TestInPeriod(t *testing.T) {
	now := monday

	assert.True(t, service.InPeriod("2026-10-19", domain.PeriodDay, now))
	assert.False(t, service.InPeriod("2026-10-18", domain.PeriodDay, now))

	assert.True(t, service.InPeriod("2026-10-12", domain.PeriodWeek, now))
	assert.False(t, service.InPeriod("2026-10-11", domain.PeriodWeek, now))
	assert.False(t, service.InPeriod("2026-10-20", domain.PeriodWeek, now), "future dates are outside the week")

	assert.True(t, service.InPeriod("2026-10-31", domain.PeriodMonth, now))
	assert.False(t, service.InPeriod("2025-10-19", domain.PeriodMonth, now))

	assert.True(t, service.InPeriod("2026-01-01", domain.PeriodYear, now))
	assert.False(t, service.InPeriod("garbage", domain.PeriodYear, now))
}

func TestProfessionalPerformance_ZeroRowsAndOrdering(t *testing.T) {
	pros := []domain.Professional{
		{ID: "1", Name: "Ana"},
		{ID: "2", Name: "Bia"},
		{ID: "3", Name: "Carla"},
	}
	appts := []domain.Appointment{
		appointment("a", "s50", "1", "2026-10-15", "10:00", domain.StatusConfirmed),
		appointment("b", "s100", "2", "2026-10-16", "10:00", domain.StatusConfirmed),
		appointment("c", "s100", "2", "2026-10-16", "11:00", domain.StatusCompleted),
		appointment("d", "s100", "1", "2025-10-16", "11:00", domain.StatusConfirmed),
	}

	rows := service.ProfessionalPerformance(appts, catalogFix, pros, domain.PeriodMonth, monday)

	require.Len(t, rows, 3)
	assert.Equal(t, domain.ProfessionalPerformance{ID: "2", Name: "Bia", Count: 1, Total: 100}, rows[0])
	assert.Equal(t, domain.ProfessionalPerformance{ID: "1", Name: "Ana", Count: 1, Total: 50}, rows[1])
	assert.Equal(t, domain.ProfessionalPerformance{ID: "3", Name: "Carla"}, rows[2])
}

func newAnalytics(t *testing.T, s stores) (*service.AnalyticsService, *observability.Metrics) {
	t.Helper()
	reports := cache.New[*domain.AnalyticsReport](time.Minute)
	t.Cleanup(reports.Close)
	metrics := observability.NewMetrics()
	svc := service.NewAnalyticsService(s.catalog, s.appointments, reports, fortaleza, metrics, zap.NewNop()).
		WithClock(func() time.Time { return monday })
	return svc, metrics
}

func TestAnalyticsReport_ScopedAccountIsPinned(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)
	require.NoError(t, s.appointments.Reserve(ctx, appointment("a", "1", "1", "2026-10-16", "10:00", domain.StatusConfirmed)))
	require.NoError(t, s.appointments.Reserve(ctx, appointment("b", "3", "2", "2026-10-16", "10:00", domain.StatusConfirmed)))

	svc, _ := newAnalytics(t, s)
	beatriz := &domain.Principal{Username: "bia", Role: domain.RoleProfessional, ProfessionalID: "2"}

	report, err := svc.Report(ctx, beatriz, domain.FilterAll, domain.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, "2", report.Filter)
	assert.Equal(t, 1, report.TotalAppointments)
	assert.Equal(t, 65.0, report.TotalRevenue)
	require.Len(t, report.Performance, 1)
	assert.Equal(t, "2", report.Performance[0].ID)
}

func TestAnalyticsReport_SuperAdminSeesAllAndCaches(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)
	require.NoError(t, s.appointments.Reserve(ctx, appointment("a", "1", "1", "2026-10-16", "10:00", domain.StatusConfirmed)))

	svc, metrics := newAnalytics(t, s)
	admin := &domain.Principal{Username: "Admin@Manu", Role: domain.RoleSuperAdmin}

	first, err := svc.Report(ctx, admin, "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterAll, first.Filter)
	assert.Equal(t, domain.PeriodMonth, first.Period)
	assert.Len(t, first.Performance, 4)
	assert.Equal(t, 100.0, first.CompletionRate)

	second, err := svc.Report(ctx, admin, "", "")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 0.5, metrics.Snapshot().CacheHitRate)

	// a new appointment changes the content hash
	require.NoError(t, s.appointments.Reserve(ctx, appointment("b", "1", "1", "2026-10-17", "10:00", domain.StatusCancelled)))
	third, err := svc.Report(ctx, admin, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, third.TotalAppointments)
	assert.Equal(t, 50.0, third.CompletionRate)
}

func TestAnalyticsReport_SuperAdminSelectionKeepsFullPerformance(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)
	require.NoError(t, s.appointments.Reserve(ctx, appointment("a", "3", "1", "2026-10-16", "10:00", domain.StatusConfirmed)))
	require.NoError(t, s.appointments.Reserve(ctx, appointment("b", "3", "2", "2026-10-16", "10:00", domain.StatusConfirmed)))

	svc, _ := newAnalytics(t, s)
	admin := &domain.Principal{Username: "Admin@Manu", Role: domain.RoleSuperAdmin}

	report, err := svc.Report(ctx, admin, "2", domain.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, "2", report.Filter)
	assert.Equal(t, 1, report.TotalAppointments)
	assert.Equal(t, 65.0, report.TotalRevenue)

	require.Len(t, report.Performance, 4)
	byID := make(map[string]domain.ProfessionalPerformance, len(report.Performance))
	for _, row := range report.Performance {
		byID[row.ID] = row
	}
	assert.Equal(t, 1, byID["1"].Count)
	assert.Equal(t, 65.0, byID["1"].Total)
	assert.Equal(t, 1, byID["2"].Count)
	assert.Zero(t, byID["3"].Count)
}

func TestAnalyticsReport_EmptyScope(t *testing.T) {
	svc, _ := newAnalytics(t, newStores(t))
	admin := &domain.Principal{Username: "Admin@Manu", Role: domain.RoleSuperAdmin}

	report, err := svc.Report(context.Background(), admin, "4", domain.PeriodYear)
	require.NoError(t, err)
	assert.Zero(t, report.CompletionRate)
	assert.Zero(t, report.TotalRevenue)
	assert.Empty(t, report.RevenueByDay)
}

func TestAnalyticsReport_InvalidPeriod(t *testing.T) {
	svc, _ := newAnalytics(t, newStores(t))
	admin := &domain.Principal{Role: domain.RoleSuperAdmin}

	_, err := svc.Report(context.Background(), admin, "", "decade")
	var valErr *domain.ErrValidation
	assert.ErrorAs(t, err, &valErr)
}
