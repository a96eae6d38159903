package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/cache"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/resilience"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// bookingSession guards one wizard against concurrent requests on the same id.
type bookingSession struct {
	mu     sync.Mutex
	wizard *Wizard
}

// BookingConfig tunes the booking service.
type BookingConfig struct {
	Hours        domain.BusinessHours
	Location     *time.Location
	PaymentDelay time.Duration
	SessionTTL   time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// BookingService drives wizard sessions and turns paid wizards into appointments.
type BookingService struct {
	catalog      port.CatalogStore
	appointments port.AppointmentStore
	sessions     *cache.InMemory[*bookingSession]
	checkouts    *resilience.Bulkhead
	metrics      *observability.Metrics
	logger       *zap.Logger

	hours        domain.BusinessHours
	loc          *time.Location
	paymentDelay time.Duration
	now          func() time.Time
}

// NewBookingService creates the booking service with all dependencies injected.
func NewBookingService(
	catalog port.CatalogStore,
	appointments port.AppointmentStore,
	checkouts *resilience.Bulkhead,
	cfg BookingConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BookingService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &BookingService{
		catalog:      catalog,
		appointments: appointments,
		sessions:     cache.New[*bookingSession](ttl),
		checkouts:    checkouts,
		metrics:      metrics,
		logger:       logger,
		hours:        cfg.Hours,
		loc:          loc,
		paymentDelay: cfg.PaymentDelay,
		now:          now,
	}
}

// Close stops the session cache janitor.
func (s *BookingService) Close() {
	s.sessions.Close()
}

func (s *BookingService) session(id string) (*bookingSession, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		s.metrics.IncrCacheMiss("wizard")
		return nil, &domain.ErrNotFound{Resource: "booking", ID: id}
	}
	s.metrics.IncrCacheHit("wizard")
	return sess, nil
}

// mutate runs fn on the session's wizard under its lock and refreshes its TTL.
func (s *BookingService) mutate(id string, fn func(w *Wizard) error) (*domain.BookingState, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess.wizard); err != nil {
		return nil, err
	}
	s.sessions.Set(id, sess)
	return sess.wizard.State(id), nil
}

// Start opens a new wizard at the service step.
func (s *BookingService) Start(ctx context.Context) *domain.BookingState {
	_, span := tracer.Start(ctx, "BookingService.Start")
	defer span.End()

	id := uuid.NewString()
	w := NewWizard()
	s.sessions.Set(id, &bookingSession{wizard: w})
	span.SetAttributes(attribute.String("booking.id", id))
	return w.State(id)
}

// Get returns the current state of a wizard.
func (s *BookingService) Get(ctx context.Context, id string) (*domain.BookingState, error) {
	_, span := tracer.Start(ctx, "BookingService.Get")
	defer span.End()

	return s.mutate(id, func(*Wizard) error { return nil })
}

func (s *BookingService) SelectService(ctx context.Context, id, serviceID string) (*domain.BookingState, error) {
	ctx, span := tracer.Start(ctx, "BookingService.SelectService")
	defer span.End()

	if strings.TrimSpace(serviceID) == "" {
		return nil, &domain.ErrValidation{Field: "serviceId", Message: "Selecione um procedimento."}
	}
	svc, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return s.mutate(id, func(w *Wizard) error { return w.SelectService(*svc) })
}

func (s *BookingService) SelectProfessional(ctx context.Context, id, professionalID string) (*domain.BookingState, error) {
	ctx, span := tracer.Start(ctx, "BookingService.SelectProfessional")
	defer span.End()

	if strings.TrimSpace(professionalID) == "" {
		return nil, &domain.ErrValidation{Field: "professionalId", Message: "Selecione um profissional."}
	}
	pro, err := s.catalog.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	return s.mutate(id, func(w *Wizard) error { return w.SelectProfessional(*pro) })
}

// Dates lists the bookable dates for the wizard, today included.
func (s *BookingService) Dates(ctx context.Context, id string) ([]string, error) {
	_, span := tracer.Start(ctx, "BookingService.Dates")
	defer span.End()

	if _, err := s.session(id); err != nil {
		return nil, err
	}
	return CandidateDates(s.now().In(s.loc), s.hours, CandidateWindowDays), nil
}

// Slots lists the half-hour slots of date for the wizard's professional,
// computed from the current appointment list.
func (s *BookingService) Slots(ctx context.Context, id, date string) ([]domain.TimeSlot, error) {
	ctx, span := tracer.Start(ctx, "BookingService.Slots")
	defer span.End()
	span.SetAttributes(attribute.String("booking.date", date))

	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	pro := sess.wizard.Professional()
	sess.mu.Unlock()

	if pro == nil {
		return []domain.TimeSlot{}, nil
	}
	appts, err := s.appointments.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return GenerateSlots(date, pro.ID, s.hours, appts), nil
}

// SelectSchedule validates date against the candidate window and clock
// against freshly generated slots before recording them.
func (s *BookingService) SelectSchedule(ctx context.Context, id, date, clock string) (*domain.BookingState, error) {
	ctx, span := tracer.Start(ctx, "BookingService.SelectSchedule")
	defer span.End()

	if date != "" && !containsDate(CandidateDates(s.now().In(s.loc), s.hours, CandidateWindowDays), date) {
		return nil, &domain.ErrValidation{Field: "date", Message: "Data indisponível para agendamento."}
	}

	appts, err := s.appointments.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return s.mutate(id, func(w *Wizard) error {
		var slots []domain.TimeSlot
		if pro := w.Professional(); pro != nil {
			slots = GenerateSlots(date, pro.ID, s.hours, appts)
		}
		return w.SelectSchedule(date, clock, slots)
	})
}

func (s *BookingService) SetCustomer(ctx context.Context, id string, info domain.CustomerInfo) (*domain.BookingState, error) {
	_, span := tracer.Start(ctx, "BookingService.SetCustomer")
	defer span.End()

	return s.mutate(id, func(w *Wizard) error { return w.SetCustomer(info.Name, info.Phone) })
}

func (s *BookingService) Back(ctx context.Context, id string) (*domain.BookingState, error) {
	_, span := tracer.Start(ctx, "BookingService.Back")
	defer span.End()

	return s.mutate(id, func(w *Wizard) error { return w.Back() })
}

// Cancel discards the wizard without creating an appointment.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "BookingService.Cancel")
	defer span.End()

	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.wizard.Payment() == domain.PaymentProcessing {
		return &domain.ErrWizardStep{Step: sess.wizard.Step(), Message: "pagamento em processamento"}
	}
	s.sessions.Delete(id)
	return nil
}

// Pay runs the simulated deposit payment and reserves the slot. Card data is
// only checked for presence. If another booking took the slot meanwhile the
// wizard returns to idle payment and ErrSlotTaken is returned.
func (s *BookingService) Pay(ctx context.Context, id string, card domain.CardDetails) (*domain.BookingConfirmation, error) {
	ctx, span := tracer.Start(ctx, "BookingService.Pay")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", id))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("checkout", time.Since(start))
	}()

	if err := validateCard(card); err != nil {
		return nil, err
	}

	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if err := sess.wizard.BeginPayment(); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	appt := sess.wizard.Appointment(uuid.NewString(), s.now())
	deposit, remaining := sess.wizard.Deposit(), sess.wizard.Remaining()
	sess.mu.Unlock()

	fail := func(err error) (*domain.BookingConfirmation, error) {
		sess.mu.Lock()
		sess.wizard.FailPayment()
		sess.mu.Unlock()
		s.sessions.Set(id, sess)
		s.metrics.IncrBooking("failed")
		return nil, err
	}

	if err := s.checkouts.Acquire(ctx); err != nil {
		return fail(err)
	}
	defer s.checkouts.Release()
	s.metrics.CheckoutStarted()
	defer s.metrics.CheckoutFinished()

	if s.paymentDelay > 0 {
		timer := time.NewTimer(s.paymentDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fail(ctx.Err())
		case <-timer.C:
		}
	}

	if err := s.appointments.Reserve(ctx, appt); err != nil {
		var taken *domain.ErrSlotTaken
		if errors.As(err, &taken) {
			s.metrics.IncrSlotConflict()
			s.logger.Warn("checkout lost slot race",
				zap.String("booking_id", id),
				zap.String("professional_id", appt.ProfessionalID),
				zap.String("date", appt.Date),
				zap.String("time", appt.Time),
			)
			return fail(err)
		}
		s.logger.Error("reserve failed", zap.String("booking_id", id), zap.Error(err))
		return fail(fmt.Errorf("reserve appointment: %w", err))
	}

	sess.mu.Lock()
	sess.wizard.CompletePayment()
	sess.mu.Unlock()
	s.sessions.Delete(id)
	s.metrics.IncrBooking("confirmed")

	s.logger.Info("booking confirmed",
		zap.String("booking_id", id),
		zap.String("appointment_id", appt.ID),
		zap.Float64("deposit", deposit),
	)

	return &domain.BookingConfirmation{
		Appointment: &appt,
		Deposit:     deposit,
		Remaining:   remaining,
		Message:     domain.MsgBookingConfirmed,
	}, nil
}

func validateCard(card domain.CardDetails) error {
	switch {
	case strings.TrimSpace(card.Number) == "":
		return &domain.ErrValidation{Field: "number", Message: "Informe o número do cartão."}
	case strings.TrimSpace(card.Holder) == "":
		return &domain.ErrValidation{Field: "holder", Message: "Informe o nome impresso no cartão."}
	case strings.TrimSpace(card.Expiry) == "":
		return &domain.ErrValidation{Field: "expiry", Message: "Informe a validade."}
	case strings.TrimSpace(card.CVV) == "":
		return &domain.ErrValidation{Field: "cvv", Message: "Informe o CVV."}
	}
	return nil
}
