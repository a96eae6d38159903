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
// 4. Autenticação — /v1/auth
// ============================================================

func loginHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := access.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func logoutHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		if err := access.Logout(ctx, claimsFromContext(ctx)); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Sessão encerrada"})
	}
}

func sessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, PrincipalFromContext(r.Context()))
	}
}

func recoveryVerifyHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/recovery/verify")
		defer span.End()

		var req domain.RecoveryVerifyRequest
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := access.VerifyRecovery(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func recoveryResetHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/recovery/reset")
		defer span.End()

		var req domain.RecoveryResetRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := access.ResetPassword(ctx, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Senha alterada com sucesso"})
	}
}

// ============================================================
// 5. Agendamentos & Analytics — /v1/admin
// ============================================================

func listAppointmentsHandler(svc *service.AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/appointments")
		defer span.End()

		views, err := svc.List(ctx, PrincipalFromContext(ctx), r.URL.Query().Get("professional"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func updateAppointmentStatusHandler(svc *service.AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/admin/appointments/{id}/status")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("appointment.id", id))

		var req domain.StatusUpdateRequest
		if !decodeBody(w, r, &req) {
			return
		}

		updated, err := svc.UpdateStatus(ctx, PrincipalFromContext(ctx), id, req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func analyticsHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/analytics")
		defer span.End()

		q := r.URL.Query()
		report, err := svc.Report(ctx, PrincipalFromContext(ctx), q.Get("professional"), domain.Period(q.Get("period")))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// ============================================================
// 6. Gestão (super-admin) — catálogo e administradores
// ============================================================

// manage resolves the super-admin capabilities for the request, answering
// 403 itself when the caller is a scoped account.
func manage(w http.ResponseWriter, r *http.Request, access *service.AccessControl, logger *zap.Logger) (*service.Management, bool) {
	mgmt, err := access.Manage(PrincipalFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err, logger)
		return nil, false
	}
	return mgmt, true
}

func addServiceHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/services")
		defer span.End()

		mgmt, ok := manage(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.ServiceInput
		if !decodeBody(w, r, &in) {
			return
		}

		svc, err := mgmt.Catalog.AddService(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, svc)
	}
}

func updateServiceHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/services/{id}")
		defer span.End()

		mgmt, ok := manage(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.ServiceInput
		if !decodeBody(w, r, &in) {
			return
		}

		svc, err := mgmt.Catalog.UpdateService(ctx, chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, svc)
	}
}

func deleteServiceHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/services/{id}")
		defer span.End()

		mgmt, ok := manage(w, r, access, logger)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		if err := mgmt.Catalog.DeleteService(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Serviço removido", ID: id})
	}
}

func addProfessionalHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/professionals")
		defer span.End()

		mgmt, ok := manage(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.ProfessionalInput
		if !decodeBody(w, r, &in) {
			return
		}

		pro, err := mgmt.Catalog.AddProfessional(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, pro)
	}
}

func updateProfessionalHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/professionals/{id}")
		defer span.End()

		mgmt, ok := manage(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.ProfessionalInput
		if !decodeBody(w, r, &in) {
			return
		}

		pro, err := mgmt.Catalog.UpdateProfessional(ctx, chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pro)
	}
}

func deleteProfessionalHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/professionals/{id}")
		defer span.End()

		mgmt, ok := manage(w, r, access, logger)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		if err := mgmt.Catalog.DeleteProfessional(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Profissional removido", ID: id})
	}
}

func listAccountsHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/accounts")
		defer span.End()

		mgmt, ok := manage(w, r, access, logger)
		if !ok {
			return
		}
		accounts, err := mgmt.Accounts.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	}
}

func registerAccountHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/accounts")
		defer span.End()

		mgmt, ok := manage(w, r, access, logger)
		if !ok {
			return
		}
		var req domain.RegisterAccountRequest
		if !decodeBody(w, r, &req) {
			return
		}

		summary, err := mgmt.Accounts.Register(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, summary)
	}
}

func deleteAccountHandler(access *service.AccessControl, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/accounts/{username}")
		defer span.End()

		mgmt, ok := manage(w, r, access, logger)
		if !ok {
			return
		}
		username := chi.URLParam(r, "username")
		if err := mgmt.Accounts.Delete(ctx, username); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Administrador removido", ID: username})
	}
}
