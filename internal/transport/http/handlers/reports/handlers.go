package reportshandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"epms/internal/domain/audit"
	"epms/internal/domain/auth"
	"epms/internal/domain/directory"
	"epms/internal/domain/reports"
	"epms/internal/transport/http/api"
	"epms/internal/transport/http/middleware"
	"epms/internal/transport/http/shared"
)

type Handler struct {
	Service   *reports.Service
	Directory *directory.Service
	Audit     *audit.Service
}

func NewHandler(service *reports.Service, dir *directory.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Directory: dir, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequireAnyAction(auth.ActionReportsRead, auth.ActionAppraisalsReadOwn)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequireAction(auth.ActionReportsRead)).Get("/cycles", h.handleCycleStats)
		r.With(middleware.RequireAction(auth.ActionReportsRead)).Get("/job-runs", h.handleListJobRuns)
		r.With(middleware.RequireAction(auth.ActionReportsExport)).Get("/appraisals/{appraisalID}/export", h.handleExportAppraisal)
	})
}

// handleDashboard returns the stats block matching the caller's role:
// employees see their own goal numbers, managers their team, admins the
// cycle-wide aggregate.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	switch {
	case auth.IsAdmin(user.Role):
		stats, err := h.Service.CycleStats(r.Context())
		if err != nil {
			api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, stats, middleware.GetRequestID(r.Context()))
	case user.Role == auth.RoleManager:
		self, err := h.Directory.EmployeeIDByUserID(r.Context(), user.UserID)
		if err != nil {
			api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		stats, err := h.Service.ManagerStats(r.Context(), self)
		if err != nil {
			api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, stats, middleware.GetRequestID(r.Context()))
	default:
		self, err := h.Directory.EmployeeIDByUserID(r.Context(), user.UserID)
		if err != nil {
			api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		stats, err := h.Service.EmployeeStats(r.Context(), self)
		if err != nil {
			api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, stats, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleCycleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.CycleStats(r.Context())
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListJobRuns(w http.ResponseWriter, r *http.Request) {
	filter := reports.JobRunFilter{
		JobType: r.URL.Query().Get("jobType"),
		Status:  r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid from date", middleware.GetRequestID(r.Context()))
			return
		}
		filter.StartedFrom = &parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid to date", middleware.GetRequestID(r.Context()))
			return
		}
		end := parsed.Add(24 * time.Hour)
		filter.StartedTo = &end
	}

	page := shared.ParsePagination(r, 50, 200)
	runs, total, err := h.Service.ListJobRuns(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportAppraisal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	appraisalID := chi.URLParam(r, "appraisalID")
	path, err := h.Service.GenerateAppraisalPDF(r.Context(), appraisalID)
	if err != nil {
		api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "reports.appraisal.export", "appraisal", appraisalID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"file": path}); err != nil {
		slog.Warn("audit reports.appraisal.export failed", "err", err)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="appraisal-`+appraisalID+`.pdf"`)
	http.ServeFile(w, r, path)
}
