package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/handler"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/cache"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/resilience"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/snapshot"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/store"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"
	"github.com/boddenberg/lessence-studio-bfa/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// monday 2026-10-19 10:00 UTC-3; the next open day is Tuesday the 20th.
var monday = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.FixedZone("BRT", -3*60*60))

func newTestRouter(t *testing.T, snap port.SnapshotStore) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	catalog := store.NewCatalogRepository(snap, logger)
	appointments := store.NewAppointmentRepository(snap, logger)
	accounts := store.NewAccountRepository(snap, logger)
	require.NoError(t, catalog.Seed(context.Background()))

	revoked := cache.New[bool](time.Hour)
	reports := cache.New[*domain.AnalyticsReport](time.Minute)
	t.Cleanup(revoked.Close)
	t.Cleanup(reports.Close)

	bookings := service.NewBookingService(catalog, appointments, resilience.NewBulkhead(2), service.BookingConfig{
		Hours:      service.DefaultBusinessHours(),
		Location:   monday.Location(),
		SessionTTL: time.Minute,
		Clock:      func() time.Time { return monday },
	}, metrics, logger)
	t.Cleanup(bookings.Close)

	return handler.NewRouter(handler.Deps{
		Store:        snap,
		Catalog:      service.NewCatalogService(catalog),
		Bookings:     bookings,
		Appointments: service.NewAppointmentService(catalog, appointments, metrics, logger),
		Analytics:    service.NewAnalyticsService(catalog, appointments, reports, monday.Location(), metrics, logger).WithClock(func() time.Time { return monday }),
		Access: service.NewAccessControl(accounts, catalog, revoked, service.AccessConfig{
			SuperAdminUsername: "Admin@Manu",
			SuperAdminPassword: "Admin@Manu",
			JWTSecret:          "router-test",
		}, metrics, logger),
		Assistant: service.NewAssistantBridge(nil, catalog, metrics, logger),
		Metrics:   metrics,
	}, logger)
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[domain.LoginResponse](t, rec).AccessToken
}

// ============================================================
// Probes
// ============================================================

func TestProbes(t *testing.T) {
	router := newTestRouter(t, snapshot.NewMemory())

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/ping"} {
		rec := do(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_WithoutMetricsSkipsMetricRoutes(t *testing.T) {
	logger := zap.NewNop()
	snap := snapshot.NewMemory()
	revoked := cache.New[bool](time.Hour)
	t.Cleanup(revoked.Close)

	router := handler.NewRouter(handler.Deps{
		Store: snap,
		Access: service.NewAccessControl(store.NewAccountRepository(snap, logger), store.NewCatalogRepository(snap, logger), revoked, service.AccessConfig{
			SuperAdminUsername: "Admin@Manu",
			SuperAdminPassword: "Admin@Manu",
			JWTSecret:          "router-test",
		}, observability.NewMetrics(), logger),
	}, logger)

	rec := do(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	token := login(t, router, "Admin@Manu", "Admin@Manu")
	rec = do(t, router, http.MethodGet, "/v1/admin/metrics", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type downStore struct{ port.SnapshotStore }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthz_StoreDown(t *testing.T) {
	router := newTestRouter(t, downStore{snapshot.NewMemory()})

	rec := do(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decode[domain.HealthStatus](t, rec).Status)
}

// ============================================================
// Booking wizard over HTTP
// ============================================================

func TestBookingFlow(t *testing.T) {
	router := newTestRouter(t, snapshot.NewMemory())

	rec := do(t, router, http.MethodGet, "/v1/services", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Service](t, rec), 6)

	rec = do(t, router, http.MethodPost, "/v1/bookings", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[domain.BookingState](t, rec).ID
	base := "/v1/bookings/" + id

	rec = do(t, router, http.MethodPut, base+"/professional", "", domain.SelectProfessionalRequest{ProfessionalID: "1"})
	assert.Equal(t, http.StatusConflict, rec.Code, "professional before service")

	rec = do(t, router, http.MethodPut, base+"/service", "", domain.SelectServiceRequest{ServiceID: "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPut, base+"/professional", "", domain.SelectProfessionalRequest{ProfessionalID: "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, base+"/dates", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dates := decode[struct {
		Dates []string `json:"dates"`
	}](t, rec).Dates
	require.NotEmpty(t, dates)
	assert.Equal(t, "2026-10-20", dates[0])

	rec = do(t, router, http.MethodGet, base+"/slots?date=2026-10-20", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decode[struct {
		Slots []domain.TimeSlot `json:"slots"`
	}](t, rec).Slots
	assert.Equal(t, "09:00", slots[0].Time)

	rec = do(t, router, http.MethodPut, base+"/schedule", "", domain.SelectScheduleRequest{Date: "2026-10-20", Time: "09:00"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, base+"/customer", "", domain.CustomerInfo{Name: "Maria"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "phone", decode[map[string]string](t, rec)["field"])

	rec = do(t, router, http.MethodPut, base+"/customer", "", domain.CustomerInfo{Name: "Maria", Phone: "85999998888"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StepPayment, decode[domain.BookingState](t, rec).Step)

	rec = do(t, router, http.MethodPost, base+"/payment", "", domain.CardDetails{Number: "4111", Holder: "MARIA", Expiry: "12/30", CVV: "123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conf := decode[domain.BookingConfirmation](t, rec)
	assert.Equal(t, 90.0, conf.Deposit)
	assert.Equal(t, domain.StatusConfirmed, conf.Appointment.Status)

	rec = do(t, router, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "session ends after payment")

	rec = do(t, router, http.MethodPost, "/v1/bookings", "", nil)
	other := "/v1/bookings/" + decode[domain.BookingState](t, rec).ID
	do(t, router, http.MethodPut, other+"/service", "", domain.SelectServiceRequest{ServiceID: "1"})
	do(t, router, http.MethodPut, other+"/professional", "", domain.SelectProfessionalRequest{ProfessionalID: "1"})
	rec = do(t, router, http.MethodGet, other+"/slots?date=2026-10-20", "", nil)
	slots = decode[struct {
		Slots []domain.TimeSlot `json:"slots"`
	}](t, rec).Slots
	assert.False(t, slots[0].Available, "09:00 is now booked")
}

func TestAssistantChat_WithoutModel(t *testing.T) {
	router := newTestRouter(t, snapshot.NewMemory())

	rec := do(t, router, http.MethodPost, "/v1/assistant/chat", "", domain.ChatRequest{Message: "Oi"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.AssistantUnavailable, decode[domain.ChatResponse](t, rec).Reply)

	rec = do(t, router, http.MethodPost, "/v1/assistant/chat", "", domain.ChatRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================
// Admin
// ============================================================

func TestAdmin_RequiresSession(t *testing.T) {
	router := newTestRouter(t, snapshot.NewMemory())

	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/v1/admin/appointments", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/v1/admin/analytics", "garbage", nil).Code)

	rec := do(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{Username: "x", Password: "y"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.MsgInvalidCredentials, decode[map[string]string](t, rec)["error"])
}

func TestAdmin_SuperAdminAndScopedAccount(t *testing.T) {
	router := newTestRouter(t, snapshot.NewMemory())
	admin := login(t, router, "Admin@Manu", "Admin@Manu")

	rec := do(t, router, http.MethodPost, "/v1/admin/accounts", admin, domain.RegisterAccountRequest{
		Name: "Ana Souza", Username: "ana", Email: "ana@lessence.com", CPF: "12345678901",
		Phone: "85999998888", Password: "segredo1", ConfirmPassword: "segredo1", ProfessionalID: "1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/v1/admin/accounts", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.AccountSummary](t, rec), 1)

	ana := login(t, router, "ana", "segredo1")

	rec = do(t, router, http.MethodGet, "/v1/auth/session", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", decode[domain.Principal](t, rec).ProfessionalID)

	rec = do(t, router, http.MethodPost, "/v1/admin/services", ana, domain.ServiceInput{Name: "X", Price: 1, DurationMinutes: 30, Category: domain.CategoryHair})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/admin/analytics?professional=all&period=week", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", decode[domain.AnalyticsReport](t, rec).Filter)

	rec = do(t, router, http.MethodGet, "/v1/admin/analytics?period=decade", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/admin/services", admin, domain.ServiceInput{Name: "Escova", Price: 90, DurationMinutes: 45, Category: domain.CategoryHair})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/admin/metrics", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/auth/logout", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/v1/auth/session", ana, nil).Code)
}

func TestAdmin_AppointmentStatus(t *testing.T) {
	mem := snapshot.NewMemory()
	router := newTestRouter(t, mem)
	appointments := store.NewAppointmentRepository(mem, zap.NewNop())
	require.NoError(t, appointments.Reserve(context.Background(), domain.Appointment{
		ID: "a1", ServiceID: "1", ProfessionalID: "2", CustomerName: "Joana", CustomerPhone: "(85) 98888-7777",
		Date: "2026-10-20", Time: "10:00", Status: domain.StatusConfirmed, PaymentStatus: domain.PaymentPaid, CreatedAt: monday,
	}))

	admin := login(t, router, "Admin@Manu", "Admin@Manu")

	rec := do(t, router, http.MethodPatch, "/v1/admin/appointments/a1/status", admin, domain.StatusUpdateRequest{Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPatch, "/v1/admin/appointments/a1/status", admin, domain.StatusUpdateRequest{Status: domain.StatusCompleted})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/admin/appointments", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	views := decode[[]domain.AppointmentView](t, rec)
	require.Len(t, views, 1)
	assert.Equal(t, domain.StatusCompleted, views[0].Status)
	assert.Equal(t, "Beatriz Lima", views[0].ProfessionalName)
}
