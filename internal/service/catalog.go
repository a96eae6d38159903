package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Public catalog
// ============================================================

// CatalogService serves the read-only catalog to customers.
type CatalogService struct {
	catalog port.CatalogStore
}

func NewCatalogService(catalog port.CatalogStore) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) Services(ctx context.Context) ([]domain.Service, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Services")
	defer span.End()
	return s.catalog.ListServices(ctx)
}

func (s *CatalogService) Professionals(ctx context.Context) ([]domain.Professional, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Professionals")
	defer span.End()
	return s.catalog.ListProfessionals(ctx)
}

// ============================================================
// Catalog management (super-admin)
// ============================================================

// CatalogManager edits services and professionals. Only AccessControl.Manage
// hands one out.
type CatalogManager struct {
	catalog port.CatalogStore
	logger  *zap.Logger
}

func validateService(in *domain.ServiceInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return &domain.ErrValidation{Field: "name", Message: "Informe o nome do serviço."}
	case in.Price < 0:
		return &domain.ErrValidation{Field: "price", Message: "Preço inválido."}
	case in.DurationMinutes <= 0:
		return &domain.ErrValidation{Field: "durationMinutes", Message: "Duração inválida."}
	case !in.Category.Valid():
		return &domain.ErrValidation{Field: "category", Message: "Categoria inválida."}
	}
	return nil
}

func (m *CatalogManager) AddService(ctx context.Context, in *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "CatalogManager.AddService")
	defer span.End()

	if err := validateService(in); err != nil {
		return nil, err
	}
	svc := domain.Service{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		Category:        in.Category,
	}
	if err := m.catalog.SaveService(ctx, svc); err != nil {
		return nil, fmt.Errorf("save service: %w", err)
	}
	m.logger.Info("service added", zap.String("service_id", svc.ID), zap.String("name", svc.Name))
	return &svc, nil
}

func (m *CatalogManager) UpdateService(ctx context.Context, id string, in *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "CatalogManager.UpdateService")
	defer span.End()

	if err := validateService(in); err != nil {
		return nil, err
	}
	if _, err := m.catalog.GetService(ctx, id); err != nil {
		return nil, err
	}
	svc := domain.Service{
		ID:              id,
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		Category:        in.Category,
	}
	if err := m.catalog.SaveService(ctx, svc); err != nil {
		return nil, fmt.Errorf("save service: %w", err)
	}
	m.logger.Info("service updated", zap.String("service_id", id))
	return &svc, nil
}

// DeleteService removes a service. Appointments that reference it keep
// their serviceId and show up as "removed".
func (m *CatalogManager) DeleteService(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "CatalogManager.DeleteService")
	defer span.End()

	if err := m.catalog.DeleteService(ctx, id); err != nil {
		return err
	}
	m.logger.Info("service deleted", zap.String("service_id", id))
	return nil
}

func validateProfessional(in *domain.ProfessionalInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &domain.ErrValidation{Field: "name", Message: "Informe o nome do profissional."}
	}
	if strings.TrimSpace(in.Role) == "" {
		return &domain.ErrValidation{Field: "role", Message: "Informe a especialidade."}
	}
	return nil
}

func (m *CatalogManager) AddProfessional(ctx context.Context, in *domain.ProfessionalInput) (*domain.Professional, error) {
	ctx, span := tracer.Start(ctx, "CatalogManager.AddProfessional")
	defer span.End()

	if err := validateProfessional(in); err != nil {
		return nil, err
	}
	pro := domain.Professional{
		ID:     uuid.NewString(),
		Name:   strings.TrimSpace(in.Name),
		Role:   strings.TrimSpace(in.Role),
		Avatar: in.Avatar,
	}
	if err := m.catalog.SaveProfessional(ctx, pro); err != nil {
		return nil, fmt.Errorf("save professional: %w", err)
	}
	m.logger.Info("professional added", zap.String("professional_id", pro.ID))
	return &pro, nil
}

func (m *CatalogManager) UpdateProfessional(ctx context.Context, id string, in *domain.ProfessionalInput) (*domain.Professional, error) {
	ctx, span := tracer.Start(ctx, "CatalogManager.UpdateProfessional")
	defer span.End()

	if err := validateProfessional(in); err != nil {
		return nil, err
	}
	if _, err := m.catalog.GetProfessional(ctx, id); err != nil {
		return nil, err
	}
	pro := domain.Professional{
		ID:     id,
		Name:   strings.TrimSpace(in.Name),
		Role:   strings.TrimSpace(in.Role),
		Avatar: in.Avatar,
	}
	if err := m.catalog.SaveProfessional(ctx, pro); err != nil {
		return nil, fmt.Errorf("save professional: %w", err)
	}
	m.logger.Info("professional updated", zap.String("professional_id", id))
	return &pro, nil
}

func (m *CatalogManager) DeleteProfessional(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "CatalogManager.DeleteProfessional")
	defer span.End()

	if err := m.catalog.DeleteProfessional(ctx, id); err != nil {
		return err
	}
	m.logger.Info("professional deleted", zap.String("professional_id", id))
	return nil
}

// ============================================================
// Appointment administration
// ============================================================

// AppointmentService lists and updates appointments for any admin, within
// the caller's scope.
type AppointmentService struct {
	catalog      port.CatalogStore
	appointments port.AppointmentStore
	metrics      *observability.Metrics
	logger       *zap.Logger
}

func NewAppointmentService(
	catalog port.CatalogStore,
	appointments port.AppointmentStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AppointmentService {
	return &AppointmentService{catalog: catalog, appointments: appointments, metrics: metrics, logger: logger}
}

// List returns the appointments visible to principal joined with catalog
// labels, most recently booked first.
func (s *AppointmentService) List(ctx context.Context, principal *domain.Principal, requestedFilter string) ([]domain.AppointmentView, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.List")
	defer span.End()

	filter := EffectiveFilter(principal, requestedFilter)
	span.SetAttributes(attribute.String("appointments.filter", filter))

	snap, err := loadSnapshot(ctx, s.catalog, s.appointments)
	if err != nil {
		return nil, err
	}

	services := servicesByID(snap.services)
	pros := make(map[string]domain.Professional, len(snap.professionals))
	for _, p := range snap.professionals {
		pros[p.ID] = p
	}

	scoped := FilterAppointments(snap.appointments, filter)
	views := make([]domain.AppointmentView, 0, len(scoped))
	for _, a := range scoped {
		v := domain.AppointmentView{
			Appointment:      a,
			ServiceName:      domain.ServiceRemovedLabel,
			ProfessionalName: domain.ProfessionalMissingLabel,
		}
		if svc, ok := services[a.ServiceID]; ok {
			v.ServiceName = svc.Name
			v.ServicePrice = svc.Price
		}
		if pro, ok := pros[a.ProfessionalID]; ok {
			v.ProfessionalName = pro.Name
		}
		views = append(views, v)
	}
	sortViews(views)
	return views, nil
}

// UpdateStatus changes an appointment's status. Scoped admins may only touch
// appointments of their own professional.
func (s *AppointmentService) UpdateStatus(ctx context.Context, principal *domain.Principal, id string, status domain.AppointmentStatus) (*domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.UpdateStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("appointment.id", id),
		attribute.String("appointment.status", string(status)),
	)

	if principal == nil {
		return nil, &domain.ErrUnauthorized{}
	}
	if !status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "Status inválido"}
	}

	filter := EffectiveFilter(principal, domain.FilterAll)
	if filter != domain.FilterAll {
		appts, err := s.appointments.ListAppointments(ctx)
		if err != nil {
			return nil, fmt.Errorf("list appointments: %w", err)
		}
		inScope := false
		for _, a := range appts {
			if a.ID == id {
				inScope = a.ProfessionalID == filter
				break
			}
		}
		if !inScope {
			return nil, &domain.ErrNotFound{Resource: "appointment", ID: id}
		}
	}

	updated, err := s.appointments.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("appointment status updated",
		zap.String("appointment_id", id),
		zap.String("status", string(status)),
		zap.String("by", principal.Username),
	)
	return updated, nil
}

func sortViews(views []domain.AppointmentView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}
