package cpehandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"teaps/internal/domain/audit"
	"teaps/internal/domain/auth"
	"teaps/internal/domain/cpe"
	"teaps/internal/domain/notifications"
	"teaps/internal/transport/http/api"
	"teaps/internal/transport/http/middleware"
	"teaps/internal/transport/http/shared"
)

type Handler struct {
	Service *cpe.Service
	Notify  *notifications.Service
	Audit   audit.Recorder
}

func NewHandler(service *cpe.Service, notify *notifications.Service, auditSvc audit.Recorder) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cpe", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCPEWrite)).Post("/activities", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermCPERead)).Get("/activities", h.handleList)
		r.With(middleware.RequirePermission(auth.PermCPEApprove)).Post("/activities/{activityID}/review", h.handleReview)
		r.With(middleware.RequirePermission(auth.PermCPERead)).Get("/compliance/{teacherID}", h.handleCompliance)
		r.With(middleware.RequirePermission(auth.PermCPEApprove)).Get("/compliance", h.handleBulkCompliance)
	})
}

func yearParam(r *http.Request) (int, bool) {
	rawYear := r.URL.Query().Get("year")
	if rawYear == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		return 0, false
	}
	return year, true
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		TeacherID    string  `json:"teacherId" validate:"required"`
		Title        string  `json:"title" validate:"required"`
		Provider     string  `json:"provider" validate:"required"`
		Hours        float64 `json:"hours" validate:"required,gt=0"`
		ActivityDate string  `json:"activityDate" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	activityDate, err := shared.ParseDate(payload.ActivityDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid activity date", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Service.SubmitActivity(r.Context(), payload.TeacherID, cpe.SubmitInput{
		Title:        payload.Title,
		Provider:     payload.Provider,
		Hours:        payload.Hours,
		ActivityDate: activityDate,
	})
	if err != nil {
		api.FailError(w, err, "cpe_submit_failed", "failed to submit activity", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "cpe.activity.submit", "cpe_activity", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, created); err != nil {
		slog.Warn("audit cpe.activity.submit failed", "err", err)
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid year", middleware.GetRequestID(r.Context()))
		return
	}

	activities, err := h.Service.ListActivities(r.Context(), r.URL.Query().Get("teacherId"), year)
	if err != nil {
		api.FailError(w, err, "cpe_list_failed", "failed to list activities", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, activities, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	reviewed, err := h.Service.ReviewActivity(r.Context(), chi.URLParam(r, "activityID"), payload.Decision, user.UserID)
	if err != nil {
		api.FailError(w, err, "cpe_review_failed", "failed to review activity", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "cpe.activity.review", "cpe_activity", reviewed.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, reviewed); err != nil {
		slog.Warn("audit cpe.activity.review failed", "err", err)
	}
	h.Notify.NotifyTeacher(r.Context(), reviewed.TeacherID, notifications.TypeCPEReviewed, "CPE activity reviewed", "Your activity was "+payload.Decision+".")
	api.Success(w, reviewed, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompliance(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid year", middleware.GetRequestID(r.Context()))
		return
	}

	record, err := h.Service.CheckCompliance(r.Context(), chi.URLParam(r, "teacherID"), year)
	if err != nil {
		api.FailError(w, err, "cpe_compliance_failed", "failed to check compliance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBulkCompliance(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid year", middleware.GetRequestID(r.Context()))
		return
	}

	records, err := h.Service.BulkCompliance(r.Context(), year, r.URL.Query().Get("department"))
	if err != nil {
		api.FailError(w, err, "cpe_compliance_failed", "failed to run compliance check", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}
