package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reserveAt(t *testing.T, s stores, a domain.Appointment, createdAt time.Time) {
	t.Helper()
	a.CreatedAt = createdAt
	require.NoError(t, s.appointments.Reserve(context.Background(), a))
}

func TestAppointmentList_LabelsAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)
	reserveAt(t, s, appointment("old", "1", "1", "2026-10-20", "09:00", domain.StatusConfirmed), monday.Add(-2*time.Hour))
	reserveAt(t, s, appointment("gone", "999", "77", "2026-10-20", "10:00", domain.StatusPending), monday)
	reserveAt(t, s, appointment("mid", "3", "2", "2026-10-21", "11:00", domain.StatusCompleted), monday.Add(-time.Hour))

	svc := service.NewAppointmentService(s.catalog, s.appointments, observability.NewMetrics(), zap.NewNop())
	views, err := svc.List(ctx, superAdmin(), "")
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, []string{"gone", "mid", "old"}, []string{views[0].ID, views[1].ID, views[2].ID})
	assert.Equal(t, domain.ServiceRemovedLabel, views[0].ServiceName)
	assert.Equal(t, domain.ProfessionalMissingLabel, views[0].ProfessionalName)
	assert.Equal(t, "Manicure Spa", views[1].ServiceName)
	assert.Equal(t, 65.0, views[1].ServicePrice)
	assert.Equal(t, "Beatriz Lima", views[1].ProfessionalName)
}

func TestAppointmentList_ScopedAccountSeesOwnOnly(t *testing.T) {
	s := newStores(t)
	reserveAt(t, s, appointment("a", "1", "1", "2026-10-20", "09:00", domain.StatusConfirmed), monday)
	reserveAt(t, s, appointment("b", "1", "2", "2026-10-20", "09:00", domain.StatusConfirmed), monday)

	svc := service.NewAppointmentService(s.catalog, s.appointments, observability.NewMetrics(), zap.NewNop())
	scoped := &domain.Principal{Username: "bia", Role: domain.RoleProfessional, ProfessionalID: "2"}

	views, err := svc.List(context.Background(), scoped, domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "b", views[0].ID)
}

func TestAppointmentUpdateStatus_Scope(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)
	reserveAt(t, s, appointment("a", "1", "1", "2026-10-20", "09:00", domain.StatusConfirmed), monday)

	svc := service.NewAppointmentService(s.catalog, s.appointments, observability.NewMetrics(), zap.NewNop())
	other := &domain.Principal{Username: "bia", Role: domain.RoleProfessional, ProfessionalID: "2"}
	owner := &domain.Principal{Username: "ana", Role: domain.RoleProfessional, ProfessionalID: "1"}

	_, err := svc.UpdateStatus(ctx, other, "a", domain.StatusCompleted)
	var notFound *domain.ErrNotFound
	assert.True(t, errors.As(err, &notFound))

	_, err = svc.UpdateStatus(ctx, owner, "a", "finished")
	var valErr *domain.ErrValidation
	assert.True(t, errors.As(err, &valErr))

	updated, err := svc.UpdateStatus(ctx, owner, "a", domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	_, err = svc.UpdateStatus(ctx, superAdmin(), "missing", domain.StatusCancelled)
	assert.True(t, errors.As(err, &notFound))
}

func TestCatalogManager_Services(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)
	ac := newAccess(t, s.accounts, s.catalog)
	mgmt, err := ac.Manage(superAdmin())
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    domain.ServiceInput
		field string
	}{
		{"missing name", domain.ServiceInput{Price: 10, DurationMinutes: 30, Category: domain.CategoryHair}, "name"},
		{"negative price", domain.ServiceInput{Name: "X", Price: -1, DurationMinutes: 30, Category: domain.CategoryHair}, "price"},
		{"zero duration", domain.ServiceInput{Name: "X", Price: 10, Category: domain.CategoryHair}, "durationMinutes"},
		{"unknown category", domain.ServiceInput{Name: "X", Price: 10, DurationMinutes: 30, Category: "barber"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mgmt.Catalog.AddService(ctx, &tt.in)
			var valErr *domain.ErrValidation
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.field, valErr.Field)
		})
	}

	added, err := mgmt.Catalog.AddService(ctx, &domain.ServiceInput{
		Name: " Escova Modeladora ", Price: 90, DurationMinutes: 45, Category: domain.CategoryHair,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Escova Modeladora", added.Name)

	updated, err := mgmt.Catalog.UpdateService(ctx, added.ID, &domain.ServiceInput{
		Name: "Escova", Price: 95, DurationMinutes: 45, Category: domain.CategoryHair,
	})
	require.NoError(t, err)
	assert.Equal(t, 95.0, updated.Price)

	list, err := service.NewCatalogService(s.catalog).Services(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 7)

	require.NoError(t, mgmt.Catalog.DeleteService(ctx, added.ID))
	_, err = mgmt.Catalog.UpdateService(ctx, added.ID, &domain.ServiceInput{
		Name: "Escova", Price: 95, DurationMinutes: 45, Category: domain.CategoryHair,
	})
	var notFound *domain.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestCatalogManager_Professionals(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)
	ac := newAccess(t, s.accounts, s.catalog)
	mgmt, err := ac.Manage(superAdmin())
	require.NoError(t, err)

	_, err = mgmt.Catalog.AddProfessional(ctx, &domain.ProfessionalInput{Name: "Elisa"})
	var valErr *domain.ErrValidation
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "role", valErr.Field)

	pro, err := mgmt.Catalog.AddProfessional(ctx, &domain.ProfessionalInput{Name: "Elisa Prado", Role: "Colorista"})
	require.NoError(t, err)

	pros, err := service.NewCatalogService(s.catalog).Professionals(ctx)
	require.NoError(t, err)
	assert.Len(t, pros, 5)

	require.NoError(t, mgmt.Catalog.DeleteProfessional(ctx, pro.ID))
	var notFound *domain.ErrNotFound
	assert.True(t, errors.As(mgmt.Catalog.DeleteProfessional(ctx, pro.ID), &notFound))
}
