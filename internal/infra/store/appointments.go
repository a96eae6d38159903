package store

import (
	"context"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AppointmentRepository implements port.AppointmentStore.
type AppointmentRepository struct {
	store  port.SnapshotStore
	logger *zap.Logger
}

// NewAppointmentRepository creates the repository.
func NewAppointmentRepository(store port.SnapshotStore, logger *zap.Logger) *AppointmentRepository {
	return &AppointmentRepository{store: store, logger: logger}
}

func (r *AppointmentRepository) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "AppointmentRepository.ListAppointments")
	defer span.End()

	items, _, err := readList[domain.Appointment](ctx, r.store, KeyAppointments)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Appointment{}
	}
	return items, nil
}

// Reserve is the compare-and-set step that closes the double-booking race:
// the slot check and the append happen inside one atomic snapshot update.
func (r *AppointmentRepository) Reserve(ctx context.Context, appt domain.Appointment) error {
	ctx, span := tracer.Start(ctx, "AppointmentRepository.Reserve")
	defer span.End()
	span.SetAttributes(
		attribute.String("appointment.professional_id", appt.ProfessionalID),
		attribute.String("appointment.date", appt.Date),
		attribute.String("appointment.time", appt.Time),
	)

	err := mutateList(ctx, r.store, KeyAppointments, nil, func(items []domain.Appointment) ([]domain.Appointment, error) {
		for _, existing := range items {
			if existing.Holds(appt.ProfessionalID, appt.Date, appt.Time) {
				return nil, &domain.ErrSlotTaken{
					ProfessionalID: appt.ProfessionalID,
					Date:           appt.Date,
					Time:           appt.Time,
				}
			}
		}
		return append(items, appt), nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("appointment reserved",
		zap.String("appointment_id", appt.ID),
		zap.String("professional_id", appt.ProfessionalID),
		zap.String("date", appt.Date),
		zap.String("time", appt.Time),
	)
	return nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) (*domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "AppointmentRepository.UpdateStatus")
	defer span.End()

	var updated domain.Appointment
	err := mutateList(ctx, r.store, KeyAppointments, nil, func(items []domain.Appointment) ([]domain.Appointment, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Status = status
				updated = items[i]
				return items, nil
			}
		}
		return nil, &domain.ErrNotFound{Resource: "appointment", ID: id}
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
