package handler

import (
	"net/http"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 1. Catálogo público
// ============================================================

func listServicesHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/services")
		defer span.End()

		services, err := svc.Services(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, services)
	}
}

func listProfessionalsHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/professionals")
		defer span.End()

		pros, err := svc.Professionals(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pros)
	}
}

// ============================================================
// 2. Agendamento — /v1/bookings
// ============================================================

func startBookingHandler(svc *service.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/bookings")
		defer span.End()

		writeJSON(w, http.StatusCreated, svc.Start(ctx))
	}
}

func getBookingHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bookings/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("booking.id", id))

		state, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func cancelBookingHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/bookings/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		if err := svc.Cancel(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func selectServiceHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/bookings/{id}/service")
		defer span.End()

		var req domain.SelectServiceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		span.SetAttributes(attribute.String("service.id", req.ServiceID))

		state, err := svc.SelectService(ctx, chi.URLParam(r, "id"), req.ServiceID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func selectProfessionalHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/bookings/{id}/professional")
		defer span.End()

		var req domain.SelectProfessionalRequest
		if !decodeBody(w, r, &req) {
			return
		}
		span.SetAttributes(attribute.String("professional.id", req.ProfessionalID))

		state, err := svc.SelectProfessional(ctx, chi.URLParam(r, "id"), req.ProfessionalID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func selectScheduleHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/bookings/{id}/schedule")
		defer span.End()

		var req domain.SelectScheduleRequest
		if !decodeBody(w, r, &req) {
			return
		}

		state, err := svc.SelectSchedule(ctx, chi.URLParam(r, "id"), req.Date, req.Time)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func setCustomerHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/bookings/{id}/customer")
		defer span.End()

		var req domain.CustomerInfo
		if !decodeBody(w, r, &req) {
			return
		}

		state, err := svc.SetCustomer(ctx, chi.URLParam(r, "id"), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func backBookingHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/bookings/{id}/back")
		defer span.End()

		state, err := svc.Back(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func bookingDatesHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bookings/{id}/dates")
		defer span.End()

		dates, err := svc.Dates(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
	}
}

func bookingSlotsHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bookings/{id}/slots")
		defer span.End()

		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "date is required")
			return
		}
		span.SetAttributes(attribute.String("slots.date", date))

		slots, err := svc.Slots(ctx, chi.URLParam(r, "id"), date)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
	}
}

func payBookingHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/bookings/{id}/payment")
		defer span.End()

		var card domain.CardDetails
		if !decodeBody(w, r, &card) {
			return
		}

		confirmation, err := svc.Pay(ctx, chi.URLParam(r, "id"), card)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, confirmation)
	}
}

// ============================================================
// 3. Assistente virtual — POST /v1/assistant/chat
// ============================================================

func assistantChatHandler(bridge *service.AssistantBridge) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/assistant/chat")
		defer span.End()

		var req domain.ChatRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		writeJSON(w, http.StatusOK, bridge.Chat(ctx, req.Message))
	}
}
