package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"
	"github.com/boddenberg/lessence-studio-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps are the services the router dispatches to.
type Deps struct {
	Store        port.SnapshotStore
	Catalog      *service.CatalogService
	Bookings     *service.BookingService
	Appointments *service.AppointmentService
	Analytics    *service.AnalyticsService
	Access       *service.AccessControl
	Assistant    *service.AssistantBridge
	Metrics      *observability.Metrics
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Store, logger))
	r.Get("/readyz", readyzHandler())
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Catálogo público
		// =============================================
		r.Get("/services", listServicesHandler(d.Catalog, logger))
		r.Get("/professionals", listProfessionalsHandler(d.Catalog, logger))

		// =============================================
		// 2. Agendamento (wizard)
		// =============================================
		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", startBookingHandler(d.Bookings))
			r.Get("/{id}", getBookingHandler(d.Bookings, logger))
			r.Delete("/{id}", cancelBookingHandler(d.Bookings, logger))
			r.Put("/{id}/service", selectServiceHandler(d.Bookings, logger))
			r.Put("/{id}/professional", selectProfessionalHandler(d.Bookings, logger))
			r.Put("/{id}/schedule", selectScheduleHandler(d.Bookings, logger))
			r.Put("/{id}/customer", setCustomerHandler(d.Bookings, logger))
			r.Post("/{id}/back", backBookingHandler(d.Bookings, logger))
			r.Get("/{id}/dates", bookingDatesHandler(d.Bookings, logger))
			r.Get("/{id}/slots", bookingSlotsHandler(d.Bookings, logger))
			r.Post("/{id}/payment", payBookingHandler(d.Bookings, logger))
		})

		// =============================================
		// 3. Assistente virtual
		// =============================================
		r.Post("/assistant/chat", assistantChatHandler(d.Assistant))

		// =============================================
		// 4. Autenticação
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/login", loginHandler(d.Access, logger))
			r.Post("/recovery/verify", recoveryVerifyHandler(d.Access, logger))
			r.Post("/recovery/reset", recoveryResetHandler(d.Access, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(SessionMiddleware(d.Access, logger))
				r.Post("/logout", logoutHandler(d.Access, logger))
				r.Get("/session", sessionHandler())
			})
		})

		// =============================================
		// 5. Painel administrativo (protected)
		// =============================================
		r.Route("/admin", func(r chi.Router) {
			r.Use(SessionMiddleware(d.Access, logger))

			r.Get("/appointments", listAppointmentsHandler(d.Appointments, logger))
			r.Patch("/appointments/{id}/status", updateAppointmentStatusHandler(d.Appointments, logger))
			r.Get("/analytics", analyticsHandler(d.Analytics, logger))
			if d.Metrics != nil {
				r.Get("/metrics", bookingMetricsHandler(d.Metrics))
			}

			// Super-admin only; Manage answers 403 for scoped accounts.
			r.Post("/services", addServiceHandler(d.Access, logger))
			r.Put("/services/{id}", updateServiceHandler(d.Access, logger))
			r.Delete("/services/{id}", deleteServiceHandler(d.Access, logger))
			r.Post("/professionals", addProfessionalHandler(d.Access, logger))
			r.Put("/professionals/{id}", updateProfessionalHandler(d.Access, logger))
			r.Delete("/professionals/{id}", deleteProfessionalHandler(d.Access, logger))
			r.Get("/accounts", listAccountsHandler(d.Access, logger))
			r.Post("/accounts", registerAccountHandler(d.Access, logger))
			r.Delete("/accounts/{username}", deleteAccountHandler(d.Access, logger))
		})
	})

	return r
}

// ============================================================
// Probes
// ============================================================

func healthzHandler(store port.SnapshotStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if store != nil {
			start := time.Now()
			err := store.Ping(r.Context())
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				logger.Warn("healthz: snapshot store ping failed", zap.Error(err))
				status = "unhealthy"
			}
			services = append(services, domain.ServiceHealth{
				Name: "snapshot-store", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		code := http.StatusOK
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				code = http.StatusServiceUnavailable
				break
			}
		}

		writeJSON(w, code, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func bookingMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
