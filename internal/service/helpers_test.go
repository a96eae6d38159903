package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/snapshot"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// monday is 2026-10-19 10:00 in Fortaleza; the salon is closed on Mondays.
var fortaleza = mustLocation("America/Fortaleza")

var monday = time.Date(2026, time.October, 19, 10, 0, 0, 0, fortaleza)

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

type stores struct {
	catalog      *store.CatalogRepository
	appointments *store.AppointmentRepository
	accounts     *store.AccountRepository
}

func newStores(t *testing.T) stores {
	t.Helper()
	mem := snapshot.NewMemory()
	s := stores{
		catalog:      store.NewCatalogRepository(mem, zap.NewNop()),
		appointments: store.NewAppointmentRepository(mem, zap.NewNop()),
		accounts:     store.NewAccountRepository(mem, zap.NewNop()),
	}
	require.NoError(t, s.catalog.Seed(context.Background()))
	return s
}

func appointment(id, serviceID, proID, date, clock string, status domain.AppointmentStatus) domain.Appointment {
	return domain.Appointment{
		ID:             id,
		ServiceID:      serviceID,
		ProfessionalID: proID,
		CustomerName:   "Cliente " + id,
		CustomerPhone:  "(85) 90000-0000",
		Date:           date,
		Time:           clock,
		Status:         status,
		PaymentStatus:  domain.PaymentPaid,
	}
}
