package appraisalhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"teaps/internal/domain/appraisal"
	"teaps/internal/domain/audit"
	"teaps/internal/domain/auth"
	"teaps/internal/domain/notifications"
	"teaps/internal/transport/http/api"
	"teaps/internal/transport/http/middleware"
	"teaps/internal/transport/http/shared"
)

type Handler struct {
	Service *appraisal.Service
	Notify  *notifications.Service
	Audit   audit.Recorder
}

func NewHandler(service *appraisal.Service, notify *notifications.Service, auditSvc audit.Recorder) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAppraisalRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermAppraisalWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermAppraisalRead)).Get("/{appraisalID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermAppraisalRead)).Get("/{appraisalID}/history", h.handleHistory)
		r.With(middleware.RequirePermission(auth.PermAppraisalWrite)).Put("/{appraisalID}/scores", h.handleUpdateScores)
		r.With(middleware.RequirePermission(auth.PermAppraisalWrite)).Post("/{appraisalID}/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermAppraisalReview)).Post("/{appraisalID}/principal-review", h.handlePrincipalReview)
		r.With(middleware.RequirePermission(auth.PermAppraisalFinalize)).Post("/{appraisalID}/hr-review", h.handleHRReview)
		r.With(middleware.RequirePermission(auth.PermAppraisalReview)).Post("/{appraisalID}/return", h.handleReturn)
		r.With(middleware.RequirePermission(auth.PermAppraisalWrite)).Post("/{appraisalID}/reopen", h.handleReopen)
	})
}

func actorFrom(user auth.UserContext) appraisal.Actor {
	return appraisal.Actor{ID: user.UserID, Role: user.RoleName}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := appraisal.ListFilter{
		TeacherID: r.URL.Query().Get("teacherId"),
		Status:    r.URL.Query().Get("status"),
	}
	if rawYear := r.URL.Query().Get("year"); rawYear != "" {
		year, err := strconv.Atoi(rawYear)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid year", middleware.GetRequestID(r.Context()))
			return
		}
		filter.Year = year
	}

	appraisals, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, err, "appraisal_list_failed", "failed to list appraisals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, appraisals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		TeacherID string             `json:"teacherId" validate:"required"`
		Year      int                `json:"year" validate:"required"`
		RawScores map[string]float64 `json:"rawScores" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), payload.TeacherID, payload.Year, payload.RawScores, actorFrom(user))
	if err != nil {
		api.FailError(w, err, "appraisal_create_failed", "failed to create appraisal", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "appraisal.create", "appraisal", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, created); err != nil {
		slog.Warn("audit appraisal.create failed", "err", err)
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.Get(r.Context(), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.FailError(w, err, "appraisal_get_failed", "failed to load appraisal", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, found, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Service.StatusHistory(r.Context(), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.FailError(w, err, "appraisal_history_failed", "failed to load status history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateScores(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		RawScores map[string]float64 `json:"rawScores" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.UpdateScores(r.Context(), chi.URLParam(r, "appraisalID"), payload.RawScores, actorFrom(user))
	if err != nil {
		api.FailError(w, err, "appraisal_update_failed", "failed to update scores", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Strengths    string `json:"strengths" validate:"required"`
		Improvements string `json:"improvements" validate:"required"`
		Goals        string `json:"goals" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.SubmitSelfAssessment(r.Context(), chi.URLParam(r, "appraisalID"), appraisal.SelfAssessment{
		Strengths:    payload.Strengths,
		Improvements: payload.Improvements,
		Goals:        payload.Goals,
	}, actorFrom(user))
	if err != nil {
		api.FailError(w, err, "appraisal_submit_failed", "failed to submit self assessment", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "appraisal.submit", "appraisal", updated.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, updated); err != nil {
		slog.Warn("audit appraisal.submit failed", "err", err)
	}
	h.Notify.NotifyTeacher(r.Context(), updated.TeacherID, notifications.TypeAppraisalSubmitted, "Self assessment submitted", "Your self assessment was submitted for review.")
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePrincipalReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Comment           string `json:"comment" validate:"required"`
		CareerAdvancement string `json:"careerAdvancement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.PrincipalReview(r.Context(), chi.URLParam(r, "appraisalID"), appraisal.ReviewInput{
		Comment:           payload.Comment,
		CareerAdvancement: payload.CareerAdvancement,
	}, actorFrom(user))
	if err != nil {
		api.FailError(w, err, "appraisal_review_failed", "failed to record principal review", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "appraisal.principal_review", "appraisal", updated.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, updated); err != nil {
		slog.Warn("audit appraisal.principal_review failed", "err", err)
	}
	h.Notify.NotifyTeacher(r.Context(), updated.TeacherID, notifications.TypeAppraisalReviewed, "Appraisal reviewed", "The principal reviewed your appraisal.")
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHRReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Comment           string `json:"comment" validate:"required"`
		CareerAdvancement string `json:"careerAdvancement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.HRReview(r.Context(), chi.URLParam(r, "appraisalID"), appraisal.ReviewInput{
		Comment:           payload.Comment,
		CareerAdvancement: payload.CareerAdvancement,
	}, actorFrom(user))
	if err != nil {
		api.FailError(w, err, "appraisal_finalize_failed", "failed to finalize appraisal", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "appraisal.hr_review", "appraisal", updated.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, updated); err != nil {
		slog.Warn("audit appraisal.hr_review failed", "err", err)
	}
	h.Notify.NotifyTeacher(r.Context(), updated.TeacherID, notifications.TypeAppraisalCompleted, "Appraisal completed", "Your appraisal was finalized with a weighted score.")
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Reason   string `json:"reason" validate:"required,min=10"`
		Comments string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.ReturnForRevision(r.Context(), chi.URLParam(r, "appraisalID"), appraisal.RevisionInput{
		Reason:   payload.Reason,
		Comments: payload.Comments,
	}, actorFrom(user))
	if err != nil {
		api.FailError(w, err, "appraisal_return_failed", "failed to return appraisal", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "appraisal.return", "appraisal", updated.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, updated); err != nil {
		slog.Warn("audit appraisal.return failed", "err", err)
	}
	h.Notify.NotifyTeacher(r.Context(), updated.TeacherID, notifications.TypeAppraisalReturned, "Appraisal returned", "Your appraisal was returned for revision: "+payload.Reason)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.Reopen(r.Context(), chi.URLParam(r, "appraisalID"), actorFrom(user))
	if err != nil {
		api.FailError(w, err, "appraisal_reopen_failed", "failed to reopen appraisal", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "appraisal.reopen", "appraisal", updated.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, updated); err != nil {
		slog.Warn("audit appraisal.reopen failed", "err", err)
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}
