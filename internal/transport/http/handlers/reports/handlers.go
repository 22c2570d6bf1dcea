package reportshandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"teaps/internal/domain/auth"
	"teaps/internal/domain/reports"
	"teaps/internal/transport/http/api"
	"teaps/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/appraisals/{appraisalID}/pdf", h.handleAppraisalPDF)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if rawYear := r.URL.Query().Get("year"); rawYear != "" {
		parsed, err := strconv.Atoi(rawYear)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid year", middleware.GetRequestID(r.Context()))
			return
		}
		year = parsed
	}

	summary, err := h.Service.Summary(r.Context(), year)
	if err != nil {
		api.FailError(w, err, "report_summary_failed", "failed to build summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAppraisalPDF(w http.ResponseWriter, r *http.Request) {
	pdfBytes, err := h.Service.AppraisalPDF(r.Context(), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.FailError(w, err, "report_pdf_failed", "failed to render appraisal pdf", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="appraisal.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}
