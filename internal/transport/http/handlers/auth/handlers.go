package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"teaps/internal/domain/auth"
	"teaps/internal/transport/http/api"
	"teaps/internal/transport/http/middleware"
	"teaps/internal/transport/http/shared"
)

type Handler struct {
	Store     *auth.Store
	JWTSecret string
	TokenTTL  time.Duration
}

func NewHandler(store *auth.Store, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{Store: store, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	user, err := h.Store.FindUserByEmail(r.Context(), payload.Email)
	if err != nil {
		// Same answer for unknown user and bad password.
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", middleware.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.IssueToken(h.JWTSecret, user.ID, user.RoleName, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_issue_failed", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("last login update failed", "err", err)
	}

	api.Success(w, map[string]any{
		"token":     token,
		"role":      user.RoleName,
		"teacherId": user.TeacherID,
	}, middleware.GetRequestID(r.Context()))
}

// HandleLogout exists for client symmetry; tokens are stateless and simply
// expire.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	api.Success(w, nil, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	teacherID, err := h.Store.TeacherIDByUserID(r.Context(), user.UserID)
	if err != nil {
		slog.Warn("teacher lookup failed", "err", err)
	}

	api.Success(w, map[string]any{
		"userId":    user.UserID,
		"role":      user.RoleName,
		"teacherId": teacherID,
	}, middleware.GetRequestID(r.Context()))
}
