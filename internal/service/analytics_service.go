package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalyticsService builds the admin dashboard report for a session.
type AnalyticsService struct {
	catalog      port.CatalogStore
	appointments port.AppointmentStore
	cache        port.Cache[*domain.AnalyticsReport]
	metrics      *observability.Metrics
	logger       *zap.Logger
	loc          *time.Location
	now          func() time.Time
}

// NewAnalyticsService creates the analytics service. A nil loc means UTC.
func NewAnalyticsService(
	catalog port.CatalogStore,
	appointments port.AppointmentStore,
	cache port.Cache[*domain.AnalyticsReport],
	loc *time.Location,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		catalog:      catalog,
		appointments: appointments,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		loc:          loc,
		now:          time.Now,
	}
}

// WithClock replaces the time source used to evaluate periods.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// snapshot is one consistent read of the three lists the dashboard needs.
type snapshot struct {
	services      []domain.Service
	professionals []domain.Professional
	appointments  []domain.Appointment
}

func loadSnapshot(ctx context.Context, catalog port.CatalogStore, appointments port.AppointmentStore) (*snapshot, error) {
	var snap snapshot
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := catalog.ListServices(gCtx)
		if err != nil {
			return fmt.Errorf("list services: %w", err)
		}
		snap.services = s
		return nil
	})
	g.Go(func() error {
		p, err := catalog.ListProfessionals(gCtx)
		if err != nil {
			return fmt.Errorf("list professionals: %w", err)
		}
		snap.professionals = p
		return nil
	})
	g.Go(func() error {
		a, err := appointments.ListAppointments(gCtx)
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}
		snap.appointments = a
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Report computes the dashboard for principal. Scoped accounts always see
// their own professional regardless of requestedFilter. An empty period
// means month.
func (s *AnalyticsService) Report(ctx context.Context, principal *domain.Principal, requestedFilter string, period domain.Period) (*domain.AnalyticsReport, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.Report")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("analytics", time.Since(start))
	}()

	if principal == nil {
		return nil, &domain.ErrUnauthorized{Message: "Sessão inválida"}
	}
	if period == "" {
		period = domain.PeriodMonth
	}
	if !period.Valid() {
		return nil, &domain.ErrValidation{Field: "period", Message: "Período inválido"}
	}

	filter := EffectiveFilter(principal, requestedFilter)
	span.SetAttributes(
		attribute.String("analytics.filter", filter),
		attribute.String("analytics.period", string(period)),
	)

	snap, err := loadSnapshot(ctx, s.catalog, s.appointments)
	if err != nil {
		return nil, err
	}

	scoped := FilterAppointments(snap.appointments, filter)
	// The performance table follows the permission scope only; the
	// super-admin's selection narrows the other figures.
	permitted := EffectiveFilter(principal, domain.FilterAll)
	permittedAppts := FilterAppointments(snap.appointments, permitted)
	pros := filterProfessionals(snap.professionals, permitted)
	now := s.now().In(s.loc)

	key, err := reportKey(scoped, permittedAppts, snap.services, pros, filter, period, now.Format(DateLayout))
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("analytics")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("analytics")

	report := &domain.AnalyticsReport{
		Filter:            filter,
		Period:            period,
		TotalAppointments: len(scoped),
		TotalRevenue:      TotalRevenue(scoped, snap.services),
		CompletionRate:    CompletionRate(scoped),
		RevenueByDay:      RevenueByDay(scoped, snap.services),
		ServicePopularity: ServicePopularity(scoped, snap.services),
		Performance:       ProfessionalPerformance(permittedAppts, snap.services, pros, period, now),
	}
	s.cache.Set(key, report)

	s.logger.Debug("analytics report computed",
		zap.String("user", principal.Username),
		zap.String("filter", filter),
		zap.String("period", string(period)),
		zap.Int("appointments", len(scoped)),
	)
	return report, nil
}

func filterProfessionals(pros []domain.Professional, filter string) []domain.Professional {
	if filter == "" || filter == domain.FilterAll {
		return pros
	}
	out := make([]domain.Professional, 0, 1)
	for _, p := range pros {
		if p.ID == filter {
			out = append(out, p)
		}
	}
	return out
}

// reportKey hashes every input the report depends on, so any write to the
// lists produces a new key.
func reportKey(appts, permitted []domain.Appointment, services []domain.Service, pros []domain.Professional, filter string, period domain.Period, day string) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, v := range []any{appts, permitted, services, pros, filter, period, day} {
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("hash analytics input: %w", err)
		}
	}
	return "analytics:" + hex.EncodeToString(h.Sum(nil)), nil
}
