package disputehandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"teaps/internal/domain/audit"
	"teaps/internal/domain/auth"
	"teaps/internal/domain/dispute"
	"teaps/internal/domain/notifications"
	"teaps/internal/transport/http/api"
	"teaps/internal/transport/http/middleware"
	"teaps/internal/transport/http/shared"
)

type Handler struct {
	Service *dispute.Service
	Notify  *notifications.Service
	Audit   audit.Recorder
}

func NewHandler(service *dispute.Service, notify *notifications.Service, auditSvc audit.Recorder) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/disputes", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDisputeOpen)).Post("/", h.handleOpen)
		r.With(middleware.RequirePermission(auth.PermDisputeRead)).Get("/{disputeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermDisputeResolve)).Post("/{disputeID}/resolve", h.handleResolve)
		r.With(middleware.RequirePermission(auth.PermDisputeResolve)).Get("/dashboard", h.handleDashboard)
	})
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		TeacherID   string `json:"teacherId" validate:"required"`
		AppraisalID string `json:"appraisalId" validate:"required"`
		Reason      string `json:"reason" validate:"required,min=10"`
		Evidence    string `json:"evidence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	opened, err := h.Service.Open(r.Context(), payload.TeacherID, payload.AppraisalID, payload.Reason, payload.Evidence)
	if err != nil {
		api.FailError(w, err, "dispute_open_failed", "failed to open dispute", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "dispute.open", "dispute", opened.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, opened); err != nil {
		slog.Warn("audit dispute.open failed", "err", err)
	}
	api.Created(w, opened, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.Get(r.Context(), chi.URLParam(r, "disputeID"))
	if err != nil {
		api.FailError(w, err, "dispute_get_failed", "failed to load dispute", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, found, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Resolution   string   `json:"resolution" validate:"required,oneof=uphold revise"`
		Comment      string   `json:"comment" validate:"required,min=10"`
		RevisedScore *float64 `json:"revisedScore"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	resolved, err := h.Service.Resolve(r.Context(), chi.URLParam(r, "disputeID"), dispute.Resolution{
		Resolution:   payload.Resolution,
		Comment:      payload.Comment,
		RevisedScore: payload.RevisedScore,
	}, user.UserID)
	if err != nil {
		api.FailError(w, err, "dispute_resolve_failed", "failed to resolve dispute", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "dispute.resolve", "dispute", resolved.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, resolved); err != nil {
		slog.Warn("audit dispute.resolve failed", "err", err)
	}
	h.Notify.NotifyTeacher(r.Context(), resolved.TeacherID, notifications.TypeDisputeResolved, "Dispute resolved", "Your score dispute was resolved: "+payload.Resolution)
	api.Success(w, resolved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Dashboard(r.Context(), dispute.DashboardFilter{
		TeacherID:  r.URL.Query().Get("teacherId"),
		Department: r.URL.Query().Get("department"),
	})
	if err != nil {
		api.FailError(w, err, "dispute_dashboard_failed", "failed to load dispute dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}
