package kpihandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"teaps/internal/domain/audit"
	"teaps/internal/domain/auth"
	"teaps/internal/domain/kpi"
	"teaps/internal/domain/notifications"
	"teaps/internal/transport/http/api"
	"teaps/internal/transport/http/middleware"
	"teaps/internal/transport/http/shared"
)

type Handler struct {
	Service *kpi.Service
	Notify  *notifications.Service
	Audit   audit.Recorder
}

func NewHandler(service *kpi.Service, notify *notifications.Service, auditSvc audit.Recorder) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kpis", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermKpiWrite)).Post("/requests", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermKpiRead)).Get("/requests", h.handleListRequests)
		r.With(middleware.RequirePermission(auth.PermKpiRead)).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequirePermission(auth.PermKpiApprove)).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermKpiApprove)).Post("/requests/{requestID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermKpiRead)).Get("/", h.handleListKpis)
		r.With(middleware.RequirePermission(auth.PermKpiWrite)).Put("/{kpiID}/progress", h.handleUpdateProgress)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		TeacherID           string  `json:"teacherId" validate:"required"`
		Title               string  `json:"title" validate:"required"`
		Description         string  `json:"description" validate:"required"`
		Justification       string  `json:"justification" validate:"required"`
		Category            string  `json:"category" validate:"required"`
		TargetValue         float64 `json:"targetValue" validate:"required,gt=0"`
		MeasurementCriteria string  `json:"measurementCriteria" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Submit(r.Context(), payload.TeacherID, kpi.SubmitInput{
		Title:               payload.Title,
		Description:         payload.Description,
		Justification:       payload.Justification,
		Category:            payload.Category,
		TargetValue:         payload.TargetValue,
		MeasurementCriteria: payload.MeasurementCriteria,
	})
	if err != nil {
		api.FailError(w, err, "kpi_submit_failed", "failed to submit kpi request", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "kpi.request.submit", "kpi_request", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, created); err != nil {
		slog.Warn("audit kpi.request.submit failed", "err", err)
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListRequests(r.Context(), kpi.RequestFilter{
		TeacherID: r.URL.Query().Get("teacherId"),
		Status:    r.URL.Query().Get("status"),
	})
	if err != nil {
		api.FailError(w, err, "kpi_list_failed", "failed to list kpi requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.GetRequest(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		api.FailError(w, err, "kpi_get_failed", "failed to load kpi request", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, found, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Comments string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	request, created, err := h.Service.Approve(r.Context(), chi.URLParam(r, "requestID"), user.UserID, payload.Comments)
	if err != nil {
		api.FailError(w, err, "kpi_approve_failed", "failed to approve kpi request", middleware.GetRequestID(r.Context()))
		return
	}

	// The status change and the resulting Kpi are separate audit entries.
	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "kpi.request.approve", "kpi_request", request.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, request); err != nil {
		slog.Warn("audit kpi.request.approve failed", "err", err)
	}
	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "kpi.create", "kpi", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, created); err != nil {
		slog.Warn("audit kpi.create failed", "err", err)
	}
	h.Notify.NotifyTeacher(r.Context(), request.TeacherID, notifications.TypeKpiReviewed, "KPI approved", "Your KPI request was approved and is now active.")
	api.Success(w, map[string]any{"request": request, "kpi": created}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Comments string `json:"comments" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	request, err := h.Service.Reject(r.Context(), chi.URLParam(r, "requestID"), user.UserID, payload.Comments)
	if err != nil {
		api.FailError(w, err, "kpi_reject_failed", "failed to reject kpi request", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "kpi.request.reject", "kpi_request", request.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, request); err != nil {
		slog.Warn("audit kpi.request.reject failed", "err", err)
	}
	h.Notify.NotifyTeacher(r.Context(), request.TeacherID, notifications.TypeKpiReviewed, "KPI rejected", "Your KPI request was rejected: "+payload.Comments)
	api.Success(w, request, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListKpis(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.Service.ListKpis(r.Context(), r.URL.Query().Get("teacherId"))
	if err != nil {
		api.FailError(w, err, "kpi_list_failed", "failed to list kpis", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, kpis, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Progress float64 `json:"progress" validate:"gte=0,lte=100"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.UpdateProgress(r.Context(), chi.URLParam(r, "kpiID"), payload.Progress)
	if err != nil {
		api.FailError(w, err, "kpi_progress_failed", "failed to update kpi progress", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}
