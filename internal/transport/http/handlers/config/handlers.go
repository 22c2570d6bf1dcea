package confighandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"teaps/internal/domain/audit"
	"teaps/internal/domain/auth"
	"teaps/internal/domain/config"
	"teaps/internal/transport/http/api"
	"teaps/internal/transport/http/middleware"
	"teaps/internal/transport/http/shared"
)

type Handler struct {
	Service *config.Service
	Audit   audit.Recorder
}

func NewHandler(service *config.Service, auditSvc audit.Recorder) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/config", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermConfigRead)).Get("/{key}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermConfigAdmin)).Put("/{key}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermConfigRead)).Get("/{key}/history", h.handleHistory)
		r.With(middleware.RequirePermission(auth.PermConfigAdmin)).Post("/{key}/restore/{version}", h.handleRestore)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		api.FailError(w, err, "config_get_failed", "failed to load configuration", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, found, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Value       map[string]any `json:"value" validate:"required"`
		Description string         `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	key := chi.URLParam(r, "key")
	var previous any
	if existing, err := h.Service.Get(r.Context(), key); err == nil {
		previous = existing
	}

	updated, err := h.Service.Update(r.Context(), key, payload.Value, user.UserID, payload.Description)
	if err != nil {
		api.FailError(w, err, "config_update_failed", "failed to update configuration", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "config.update", "configuration", key, middleware.GetRequestID(r.Context()), shared.ClientIP(r), previous, updated); err != nil {
		slog.Warn("audit config.update failed", "err", err)
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Service.History(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		api.FailError(w, err, "config_history_failed", "failed to load configuration history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid version", middleware.GetRequestID(r.Context()))
		return
	}

	key := chi.URLParam(r, "key")
	restored, err := h.Service.Restore(r.Context(), key, version, user.UserID)
	if err != nil {
		api.FailError(w, err, "config_restore_failed", "failed to restore configuration", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, user.RoleName, "config.restore", "configuration", key, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, restored); err != nil {
		slog.Warn("audit config.restore failed", "err", err)
	}
	api.Success(w, restored, middleware.GetRequestID(r.Context()))
}
